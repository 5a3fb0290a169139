package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	// Known xxHash64 vectors keep the on-disk ID assignment stable across
	// library upgrades.
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestIDDistinctNames(t *testing.T) {
	names := []string{
		"SLS in water",
		"SLS in 10mM NaCl",
		"CTAB in water",
		"DTAB in water",
	}

	seen := make(map[uint64]string, len(names))
	for _, name := range names {
		id := ID(name)
		require.NotZero(t, id)
		prev, dup := seen[id]
		require.False(t, dup, "names %q and %q collided", prev, name)
		seen[id] = name

		// Deterministic across calls.
		require.Equal(t, id, ID(name))
	}
}

func TestChecksumMatchesID(t *testing.T) {
	// ID hashes a string, Checksum hashes raw bytes; over identical content
	// they must agree, since the archive trailer is verified against bytes.
	for _, s := range []string{"", "surfactant", "conductivity \xf0\x9f\xa7\xaa"} {
		require.Equal(t, ID(s), Checksum([]byte(s)))
	}
}

func BenchmarkID(b *testing.B) {
	name := "sodium dodecyl sulfate 25C run 3"
	b.ResetTimer()
	for b.Loop() {
		ID(name)
	}
}
