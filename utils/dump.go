package utils

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

// dumpConfig prints stable output: no pointer addresses, sorted map keys.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                8,
}

// Fdump writes a readable dump of values to w.
func Fdump(w io.Writer, values ...any) {
	dumpConfig.Fdump(w, values...)
}

// Sdump returns a readable dump of values.
func Sdump(values ...any) string {
	return dumpConfig.Sdump(values...)
}
