package objfile

import (
	"fmt"
	"io"
	"strings"
)

// Intel HEX record types.
const (
	recordData = 0x00
	recordEOF  = 0x01
)

// recordBuffer accumulates the payload of one hex data record.
type recordBuffer struct {
	addr  uint16 // address the buffered bytes start at
	data  []byte
	limit int
}

func (r *recordBuffer) append(b byte) {
	r.data = append(r.data, b)
}

func (r *recordBuffer) full() bool {
	return len(r.data) >= r.limit
}

func (r *recordBuffer) empty() bool {
	return len(r.data) == 0
}

// end returns the logical address one past the buffered bytes.
func (r *recordBuffer) end() uint16 {
	return r.addr + uint16(len(r.data))
}

// take returns the buffered record start address and payload and clears the
// buffer.
func (r *recordBuffer) take() (uint16, []byte) {
	data := r.data
	r.data = nil
	return r.addr, data
}

// writeRecord serializes one hex record as ASCII: a colon start marker, then
// the byte count, address, record type, payload and checksum fields, each
// rendered as two uppercase hex digits, terminated by a line break.
func writeRecord(w io.Writer, recType byte, addr uint16, data []byte) error {
	buf := &strings.Builder{}
	buf.WriteByte(':')
	fmt.Fprintf(buf, "%02X%04X%02X", len(data), addr, recType)
	for _, b := range data {
		fmt.Fprintf(buf, "%02X", b)
	}
	fmt.Fprintf(buf, "%02X\n", checksum(recType, addr, data))

	if _, err := io.WriteString(w, buf.String()); err != nil {
		return fmt.Errorf("writing hex record: %w", err)
	}
	return nil
}

// checksum computes the two's complement of the mod 256 sum of all record
// fields, making the byte-wise sum of the full record zero.
func checksum(recType byte, addr uint16, data []byte) byte {
	sum := byte(len(data))
	sum += byte(addr >> 8)
	sum += byte(addr)
	sum += recType
	for _, b := range data {
		sum += b
	}
	return -sum
}
