// Package loader handles input image loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marcinbor85/gohex"
)

const addressSpaceSize = 0x10000

// Segment is a contiguous run of bytes at a target address.
type Segment struct {
	Address uint16
	Data    []byte
}

// Image is the assembled program image to emit, segments sorted by address.
type Image struct {
	Segments []Segment
}

// Load reads the input file. Intel HEX input is parsed into its data
// segments, anything else is treated as a raw binary placed at the base
// address.
func Load(filename string, base uint16) (*Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hex", ".ihx":
		return loadHex(file)
	default:
		return loadBinary(file, base)
	}
}

func loadBinary(r io.Reader, base uint16) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading binary image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("input image is empty")
	}
	if int(base)+len(data) > addressSpaceSize {
		return nil, fmt.Errorf("image of %d bytes does not fit the address space at base $%04X",
			len(data), base)
	}

	return &Image{Segments: []Segment{{Address: base, Data: data}}}, nil
}

func loadHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parsing hex image: %w", err)
	}

	img := &Image{}
	for _, segment := range mem.GetDataSegments() {
		if segment.Address+uint32(len(segment.Data)) > addressSpaceSize {
			return nil, fmt.Errorf("hex segment at %08X exceeds the 16-bit address space",
				segment.Address)
		}
		img.Segments = append(img.Segments, Segment{
			Address: uint16(segment.Address),
			Data:    segment.Data,
		})
	}
	if len(img.Segments) == 0 {
		return nil, errors.New("input image is empty")
	}

	sort.Slice(img.Segments, func(i, j int) bool {
		return img.Segments[i].Address < img.Segments[j].Address
	})
	return img, nil
}
