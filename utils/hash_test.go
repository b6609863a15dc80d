package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintSeparatesParts(t *testing.T) {
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
	assert.Equal(t, Fingerprint("a", "b"), Fingerprint("a", "b"))
	assert.Equal(t, FingerprintString("abc"), Fingerprint("abc"))
}

func TestMix64(t *testing.T) {
	a, b := FingerprintString("a"), FingerprintString("b")
	assert.NotEqual(t, Mix64(a, b), Mix64(b, a))
	assert.Len(t, U64ToBytes(a), 8)
}

func TestDumpIsStable(t *testing.T) {
	v := map[string][]int{"b": {2}, "a": {1}}

	var buf bytes.Buffer
	Fdump(&buf, v)

	assert.Equal(t, buf.String(), Sdump(v))
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"a"`)), bytes.Index(buf.Bytes(), []byte(`"b"`)))
}
