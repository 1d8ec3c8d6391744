package objfile

import (
	"bytes"
	"fmt"
	"io"
)

const (
	// FillByte pads unwritten address ranges in sequential binary output.
	FillByte = 0xff

	// mos loader header start marker
	headerMarker = 0xff

	// DefaultRecordLength is the number of data bytes per hex record if not
	// configured otherwise.
	DefaultRecordLength = 16
	// MaxRecordLength is the hex record buffer capacity.
	MaxRecordLength = 32
)

// Options configure an emitter for one assembly run.
type Options struct {
	Format Format

	// LoadAddress is the address a loader places the image at. Setting it
	// enables the mos header fields and suppresses writes until the physical
	// cursor has reached it.
	LoadAddress    uint16
	HasLoadAddress bool

	RecordLength int  // data bytes per hex record, defaults to DefaultRecordLength
	NoFill       bool // skip the final gap fill pass at End

	// Handler receives recoverable address discipline errors,
	// a nil handler drops the reports.
	Handler ErrorHandler
}

// Emitter tracks the logical target address of assembled bytes and encodes
// them into the configured object file format. All operations use a 16-bit
// address domain, values wrap mod 65536.
type Emitter struct {
	w    io.Writer
	opts Options

	addr   uint16 // logical address assigned to the next emitted byte
	cursor uint16 // bytes physically written, binary formats only
	nonSeq bool   // latched on logical address regression

	record recordBuffer
}

// New creates a new emitter writing to the given writer. An unknown format
// selector is fatal, the write discipline is undefined for it.
func New(w io.Writer, opts Options) (*Emitter, error) {
	switch opts.Format {
	case BinaryFormat, MosFormat, HexFormat:
	default:
		return nil, fmt.Errorf("unsupported object file format '%s'", opts.Format)
	}

	if opts.RecordLength == 0 {
		opts.RecordLength = DefaultRecordLength
	}
	if opts.RecordLength < 0 || opts.RecordLength > MaxRecordLength {
		return nil, fmt.Errorf("record length %d exceeds the buffer capacity of %d bytes",
			opts.RecordLength, MaxRecordLength)
	}
	if opts.Handler == nil {
		opts.Handler = func(ErrorKind) {}
	}

	return &Emitter{
		w:      w,
		opts:   opts,
		record: recordBuffer{limit: opts.RecordLength},
	}, nil
}

// Address returns the current logical address.
func (e *Emitter) Address() uint16 {
	return e.addr
}

// Begin writes the object file header. Only the mos format carries one, a
// start marker followed by the load address, low byte first.
func (e *Emitter) Begin() error {
	if e.opts.Format != MosFormat {
		return nil
	}

	header := []byte{headerMarker, byte(e.opts.LoadAddress), byte(e.opts.LoadAddress >> 8)}
	if _, err := e.w.Write(header); err != nil {
		return fmt.Errorf("writing loader header: %w", err)
	}
	return nil
}

// SetOrigin sets the logical address for the following writes, the ORG
// equivalent of the assembler. For binary formats a regression below the
// current logical address latches the non-sequential condition, a
// forward-or-equal origin change clears it again.
func (e *Emitter) SetOrigin(addr uint16) {
	switch e.opts.Format {
	case BinaryFormat, MosFormat:
		e.nonSeq = addr < e.addr
		if e.beforeLoadAddress() {
			// the span before the load address is never filled
			e.cursor = addr
		}
		e.addr = addr

	case HexFormat:
		// a following write detects the discontinuity and flushes
		e.addr = addr
	}
}

// Write emits the given bytes at the current logical address.
func (e *Emitter) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	switch e.opts.Format {
	case BinaryFormat, MosFormat:
		return e.writeBinary(data)
	case HexFormat:
		return e.writeHex(data)
	}
	return nil
}

// Skip advances the logical address without emitting bytes. Binary formats
// keep the position frozen while the non-sequential condition is latched.
func (e *Emitter) Skip(count uint16) {
	if count == 0 {
		return
	}

	switch e.opts.Format {
	case BinaryFormat, MosFormat:
		if !e.nonSeq {
			e.addr += count
		}

	case HexFormat:
		e.addr += count
	}
}

// FillValue emits count repetitions of value at the current logical address,
// following the same write discipline as Write.
func (e *Emitter) FillValue(count uint16, value byte) error {
	if count == 0 {
		return nil
	}

	switch e.opts.Format {
	case BinaryFormat, MosFormat:
		return e.writeBinary(bytes.Repeat([]byte{value}, int(count)))
	case HexFormat:
		return e.writeHex(bytes.Repeat([]byte{value}, int(count)))
	}
	return nil
}

// Flush emits the buffered hex record, if any. The next record accumulation
// starts at the current logical address. No-op for binary formats.
func (e *Emitter) Flush() error {
	if e.opts.Format != HexFormat {
		return nil
	}

	if !e.record.empty() {
		addr, data := e.record.take()
		if err := writeRecord(e.w, recordData, addr, data); err != nil {
			return err
		}
	}
	e.record.addr = e.addr
	return nil
}

// End finalizes the object file. Binary formats are gap-filled up to the last
// logical address unless disabled, the hex format flushes the pending record
// and emits the end-of-file record carrying the program start address.
func (e *Emitter) End(startAddr uint16) error {
	switch e.opts.Format {
	case BinaryFormat, MosFormat:
		if e.opts.NoFill || e.beforeLoadAddress() {
			return nil
		}
		return e.fill()

	case HexFormat:
		if err := e.Flush(); err != nil {
			return err
		}
		return writeRecord(e.w, recordEOF, startAddr, nil)
	}
	return nil
}

func (e *Emitter) writeBinary(data []byte) error {
	if e.nonSeq {
		e.opts.Handler(NonSequentialWrite)
		return nil
	}
	if e.beforeLoadAddress() {
		e.opts.Handler(WriteBeforeOrigin)
		e.addr += uint16(len(data))
		return nil
	}

	if err := e.fill(); err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("writing object code: %w", err)
	}
	e.cursor += uint16(len(data))
	e.addr += uint16(len(data))
	return nil
}

func (e *Emitter) writeHex(data []byte) error {
	if e.record.end() != e.addr {
		if err := e.Flush(); err != nil {
			return err
		}
	}

	for _, b := range data {
		if e.record.full() {
			if err := e.Flush(); err != nil {
				return err
			}
		}
		e.record.append(b)
		e.addr++
	}
	return nil
}

func (e *Emitter) beforeLoadAddress() bool {
	return e.opts.HasLoadAddress && e.cursor < e.opts.LoadAddress
}

// fill pads the binary stream with the fill byte up to the logical address.
func (e *Emitter) fill() error {
	if e.cursor >= e.addr {
		return nil
	}

	gap := bytes.Repeat([]byte{FillByte}, int(e.addr-e.cursor))
	if _, err := e.w.Write(gap); err != nil {
		return fmt.Errorf("writing gap fill: %w", err)
	}
	e.cursor = e.addr
	return nil
}
