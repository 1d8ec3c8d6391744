// Package verification verifies that the generated output file recreates the input.
package verification

import (
	"bytes"
	"fmt"
	"os"

	"github.com/marcinbor85/gohex"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retroobj/internal/loader"
	"github.com/retroenv/retroobj/internal/objfile"
	"github.com/retroenv/retroobj/internal/options"
)

const addressSpaceSize = 0x10000

// VerifyOutput verifies that the output file recreates the input image.
func VerifyOutput(logger *log.Logger, opts options.Program, emission options.Emission,
	img *loader.Image) error {

	output, err := os.ReadFile(opts.Output)
	if err != nil {
		return fmt.Errorf("reading output file for comparison: %w", err)
	}

	switch emission.Format {
	case objfile.BinaryFormat:
		return checkBufferEqual(logger, flattenImage(img, emission), output)

	case objfile.MosFormat:
		return verifyMos(logger, img, emission, output)

	case objfile.HexFormat:
		return verifyHex(logger, img, emission, output)
	}
	return fmt.Errorf("unsupported object file format '%s'", emission.Format)
}

func verifyMos(logger *log.Logger, img *loader.Image, emission options.Emission,
	output []byte) error {

	if len(output) < 3 {
		return fmt.Errorf("output of %d bytes is too short for the loader header", len(output))
	}
	if output[0] != objfile.FillByte {
		return fmt.Errorf("loader header marker mismatch, got $%02X", output[0])
	}
	headerAddr := uint16(output[1]) | uint16(output[2])<<8
	if headerAddr != emission.Load {
		return fmt.Errorf("loader header address mismatch, expected $%04X but got $%04X",
			emission.Load, headerAddr)
	}

	return checkBufferEqual(logger, flattenImage(img, emission), output[3:])
}

func verifyHex(logger *log.Logger, img *loader.Image, emission options.Emission,
	output []byte) error {

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(canonicalEOF(output))); err != nil {
		return fmt.Errorf("parsing emitted hex records: %w", err)
	}

	expected := make([]int, addressSpaceSize)
	for i := range expected {
		expected[i] = -1
	}
	for _, segment := range img.Segments {
		for i, b := range segment.Data {
			expected[int(segment.Address)+i] = int(b)
		}
	}

	covered := make([]bool, addressSpaceSize)
	var diffs uint64
	for _, segment := range mem.GetDataSegments() {
		for i, b := range segment.Data {
			addr := int(segment.Address) + i
			covered[addr] = true
			if expected[addr] != int(b) {
				diffs++
				if diffs < 10 {
					logger.Error("Offset mismatch",
						log.Hex("address", addr),
						log.Hex("got", b))
				}
			}
		}
	}

	for addr, want := range expected {
		if want < 0 || covered[addr] {
			continue
		}
		// trimmed fill runs are represented as address gaps
		if emission.TrimFill && want == objfile.FillByte {
			continue
		}
		diffs++
		if diffs < 10 {
			logger.Error("Missing byte",
				log.Hex("address", addr),
				log.Hex("expected", want))
		}
	}

	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d address mismatches", diffs)
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}

// canonicalEOF replaces an end-of-file record that carries the program start
// address in its address field with the canonical ":00000001FF" form that
// strict Intel HEX parsers expect.
func canonicalEOF(output []byte) []byte {
	lines := bytes.Split(output, []byte("\n"))
	for i, line := range lines {
		if len(line) == 11 && bytes.HasPrefix(line, []byte(":00")) &&
			bytes.Equal(line[7:9], []byte("01")) {
			lines[i] = []byte(":00000001FF")
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// flattenImage recreates the flat byte stream a binary format emission of
// the image produces: segments in address order with gaps filled, starting
// at address zero, or at the first segment at or above the load address if
// one is configured.
func flattenImage(img *loader.Image, emission options.Emission) []byte {
	var buf []byte
	var cursor uint16
	started := !emission.HasLoad

	for _, segment := range img.Segments {
		if !started {
			// writes before the load address are suppressed
			if segment.Address < emission.Load {
				continue
			}
			cursor = segment.Address
			started = true
		}

		if segment.Address > cursor {
			gap := bytes.Repeat([]byte{objfile.FillByte}, int(segment.Address-cursor))
			buf = append(buf, gap...)
			cursor = segment.Address
		}
		buf = append(buf, segment.Data...)
		cursor += uint16(len(segment.Data))
	}
	return buf
}
