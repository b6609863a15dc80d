package core

import "errors"

var (
	// ErrNoDataTypeInfo is returned when a Contract type has no registered
	// Data type to back it.
	ErrNoDataTypeInfo = errors.New("core: no data type info for contract type")
	ErrNoConstructor  = errors.New("core: no constructor for signature")
	ErrUnknownType    = errors.New("core: unknown type")
	ErrNotData        = errors.New("core: type is not a data type")
	ErrNotContract    = errors.New("core: type is not a contract type")
	ErrNotSurrogate   = errors.New("core: type is not a surrogate type")
)
