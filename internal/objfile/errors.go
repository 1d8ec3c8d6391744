package objfile

// ErrorKind identifies a recoverable address discipline violation. Both kinds
// leave the emitter operational, the affected bytes are discarded.
type ErrorKind int

const (
	// NonSequentialWrite is reported when bytes are written to a sequential
	// binary format after the logical address regressed. The position stays
	// frozen until a forward origin change clears the condition.
	NonSequentialWrite ErrorKind = iota
	// WriteBeforeOrigin is reported when bytes are written while the physical
	// cursor has not yet reached the configured load address. The logical
	// address still advances.
	WriteBeforeOrigin
)

func (k ErrorKind) String() string {
	switch k {
	case NonSequentialWrite:
		return "non-sequential object code"
	case WriteBeforeOrigin:
		return "object code before ORG"
	}
	return "unknown error"
}

// ErrorHandler receives recoverable address discipline errors. The emitter
// continues operating after each report.
type ErrorHandler func(kind ErrorKind)
