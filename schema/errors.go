package schema

import "errors"

var (
	ErrNotStruct             = errors.New("schema: type is not a struct")
	ErrLocatorSealed         = errors.New("schema: locator already loaded, register before the first lookup")
	ErrUnknownType           = errors.New("schema: unknown type")
	ErrInvalidManifest       = errors.New("schema: invalid manifest")
	ErrUnsupportedConversion = errors.New("schema: unsupported conversion")
	ErrUnknownProperty       = errors.New("schema: unknown property")
)
