package objfile

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Format
		expectError bool
	}{
		{
			name:  "binary",
			input: "bin",
			want:  BinaryFormat,
		},
		{
			name:  "mos",
			input: "mos",
			want:  MosFormat,
		},
		{
			name:  "hex",
			input: "hex",
			want:  HexFormat,
		},
		{
			name:  "mixed case",
			input: "HEX",
			want:  HexFormat,
		},
		{
			name:        "unknown format",
			input:       "elf",
			expectError: true,
		},
		{
			name:        "empty selector",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.expectError {
				assert.True(t, err != nil)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".bin", BinaryFormat.Extension())
	assert.Equal(t, ".mos", MosFormat.Extension())
	assert.Equal(t, ".hex", HexFormat.Extension())
}
