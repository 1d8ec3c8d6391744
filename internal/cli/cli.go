// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/retroobj/internal/objfile"
	"github.com/retroenv/retroobj/internal/options"
)

// ParseFlags parses command line flags and returns program and emission options
func ParseFlags() (options.Program, options.Emission, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, options.Emission{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Emission{}, err
	}

	if opts.Batch == "" {
		opts.Input = args[0]
	}

	emission, err := createEmissionOptions(opts)
	if err != nil {
		return opts, options.Emission{}, err
	}

	return opts, emission, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retroobj [options] <input file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after input file, please pass the input file as last argument", arg),
			}
		}
	}
	return nil
}

// createEmissionOptions resolves the emitter configuration from the raw
// program options.
func createEmissionOptions(opts options.Program) (options.Emission, error) {
	format, err := objfile.ParseFormat(opts.Format)
	if err != nil {
		return options.Emission{}, err
	}

	emission := options.Emission{
		Format:       format,
		RecordLength: opts.RecordLength,
		NoFill:       opts.NoFill,
		TrimFill:     opts.TrimFill,
	}

	if emission.Base, err = parseAddress(opts.Base); err != nil {
		return options.Emission{}, fmt.Errorf("parsing base address: %w", err)
	}
	if opts.Load != "" {
		if emission.Load, err = parseAddress(opts.Load); err != nil {
			return options.Emission{}, fmt.Errorf("parsing load address: %w", err)
		}
		emission.HasLoad = true
	}
	if opts.Start != "" {
		if emission.Start, err = parseAddress(opts.Start); err != nil {
			return options.Emission{}, fmt.Errorf("parsing start address: %w", err)
		}
		emission.HasStart = true
	}

	return emission, nil
}

// parseAddress parses a 16-bit address literal, hex with a $ or 0x prefix,
// decimal otherwise.
func parseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}

	value, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s'", s)
	}
	return uint16(value), nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output object file, derived from the input name if not given")
	flags.StringVar(&opts.Format, "f", "hex", "object file format of the generated output (bin/mos/hex)")
	flags.StringVar(&opts.Base, "a", "0", "address the input image is placed at, $ or 0x prefix for hex")
	flags.StringVar(&opts.Load, "l", "", "load address, fills the mos loader header and suppresses writes before it")
	flags.StringVar(&opts.Start, "s", "", "start address written into the hex end-of-file record")
	flags.IntVar(&opts.RecordLength, "r", objfile.DefaultRecordLength, "maximum number of data bytes per hex record")
	flags.BoolVar(&opts.NoFill, "nofill", false, "do not gap-fill the binary output up to the last logical address")
	flags.BoolVar(&opts.TrimFill, "trim", false, "emit runs of fill bytes as address gaps instead of hex record data")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of files matching the given pattern, for example *.bin")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the generated output by reading it back and comparing it against the input image")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
