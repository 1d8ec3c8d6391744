// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retroobj/internal/loader"
	"github.com/retroenv/retroobj/internal/objfile"
	"github.com/retroenv/retroobj/internal/options"
	"github.com/retroenv/retroobj/internal/verification"
)

// ProcessFile handles the complete file processing workflow
func ProcessFile(logger *log.Logger, opts options.Program, emission options.Emission) error {
	img, err := loader.Load(opts.Input, emission.Base)
	if err != nil {
		return fmt.Errorf("loading input image: %w", err)
	}

	writer, closeWriter, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	reporter := func(kind objfile.ErrorKind) {
		logger.Error("Address discipline violation",
			log.String("error", kind.String()),
			log.String("file", opts.Input))
	}

	emitter, err := objfile.New(writer, objfile.Options{
		Format:         emission.Format,
		LoadAddress:    emission.Load,
		HasLoadAddress: emission.HasLoad,
		RecordLength:   emission.RecordLength,
		NoFill:         emission.NoFill,
		Handler:        reporter,
	})
	if err != nil {
		closeWriter()
		return fmt.Errorf("creating emitter: %w", err)
	}

	if err := emit(emitter, img, emission); err != nil {
		closeWriter()
		return fmt.Errorf("emitting object code: %w", err)
	}
	closeWriter()

	if opts.Verify {
		if opts.Output == "" {
			return errors.New("can not verify console output")
		}
		if err := verification.VerifyOutput(logger, opts, emission, img); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the output filename for a given input
// file, using the default file extension of the output format.
func GenerateOutputFilename(inputFile string, format objfile.Format) string {
	ext := filepath.Ext(inputFile)
	outputFile := inputFile[:len(inputFile)-len(ext)] + format.Extension()
	if outputFile == inputFile {
		outputFile = inputFile + format.Extension()
	}
	return outputFile
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("retroobj", log.String("version", buildinfo.Version(version, commit, date)))
}

// emit drives the emitter over all image segments, the same call sequence
// the code generation pass of an assembler produces.
func emit(emitter *objfile.Emitter, img *loader.Image, emission options.Emission) error {
	if err := emitter.Begin(); err != nil {
		return err
	}

	for _, segment := range img.Segments {
		emitter.SetOrigin(segment.Address)

		if emission.TrimFill && emission.Format == objfile.HexFormat {
			if err := writeTrimmed(emitter, segment.Data, emission.RecordLength); err != nil {
				return err
			}
			continue
		}
		if err := emitter.Write(segment.Data); err != nil {
			return err
		}
	}

	return emitter.End(emission.Start)
}

// writeTrimmed emits segment data, turning runs of the fill byte that would
// span at least one full record into address gaps.
func writeTrimmed(emitter *objfile.Emitter, data []byte, minRun int) error {
	if minRun <= 0 {
		minRun = objfile.DefaultRecordLength
	}

	for len(data) > 0 {
		if run := fillRunLength(data); run >= minRun {
			emitter.Skip(uint16(run))
			data = data[run:]
			continue
		}

		// emit up to the start of the next trimmable fill run
		end := 0
		for end < len(data) {
			run := fillRunLength(data[end:])
			if run >= minRun {
				break
			}
			end += run + 1
			if end > len(data) {
				end = len(data)
			}
		}

		if err := emitter.Write(data[:end]); err != nil {
			return err
		}
		data = data[end:]
	}
	return nil
}

// fillRunLength returns the length of the run of fill bytes at the start of
// data.
func fillRunLength(data []byte) int {
	n := 0
	for n < len(data) && data[n] == objfile.FillByte {
		n++
	}
	return n
}

func createWriter(opts options.Program) (*os.File, func(), error) {
	if opts.Output == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, func() { _ = file.Close() }, nil
}
