// Package objfile implements the object code emission layer of a two-pass
// assembler. It serializes assembled bytes, each tagged with a logical target
// address, into one of the supported object file encodings.
package objfile

import (
	"fmt"
	"strings"
)

// Format selects the object file encoding.
type Format string

const (
	// BinaryFormat is a flat byte stream, address gaps filled with 0xff.
	BinaryFormat Format = "bin"
	// MosFormat is the binary stream preceded by a 3 byte loader header.
	MosFormat Format = "mos"
	// HexFormat is ASCII Intel HEX records with checksums.
	HexFormat Format = "hex"
)

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(name))
	switch format {
	case BinaryFormat, MosFormat, HexFormat:
		return format, nil
	}
	return "", fmt.Errorf("unsupported object file format '%s'", name)
}

// Extension returns the default output file extension of the format.
func (f Format) Extension() string {
	switch f {
	case BinaryFormat:
		return ".bin"
	case MosFormat:
		return ".mos"
	case HexFormat:
		return ".hex"
	}
	return ""
}
