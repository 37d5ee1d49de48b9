package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"\t\n", ""},
		{"react", "React"},
		{"  react native  ", "React native"},
		{"React", "React"},
		{"gRPC", "GRPC"},
		{"node.js", "Node.js"},
		{"3d printing", "3d printing"},
		{"éclair", "Éclair"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"go", " Go ", "kubernetes", "ÿes", "a b c", "  x", "Already Fine"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFoldKeyComposesAccents(t *testing.T) {
	composed := "Caf\u00e9"
	decomposed := "Cafe\u0301"
	assert.Equal(t, foldKey(composed), foldKey(decomposed))
}
