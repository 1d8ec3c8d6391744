// Package options contains the program options.
package options

import (
	"github.com/retroenv/retroobj/internal/objfile"
)

// Program options of the object file converter.
type Program struct {
	Input  string
	Output string
	Batch  string

	Format string
	Base   string
	Load   string
	Start  string

	RecordLength int
	NoFill       bool
	TrimFill     bool

	Verify bool
	Debug  bool
	Quiet  bool
}

// Emission defines the resolved emitter configuration, with all address
// literals parsed and the format selector validated.
type Emission struct {
	Format objfile.Format

	Base uint16 // address the input image is placed at

	Load    uint16 // load address, gates writes and fills the mos header
	HasLoad bool

	Start    uint16 // program entry point for the hex end-of-file record
	HasStart bool

	RecordLength int
	NoFill       bool
	TrimFill     bool
}
