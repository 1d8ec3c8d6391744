// Package main implements the main entry point for a multi format object file converter
package main

import (
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retroobj/internal/cli"
	"github.com/retroenv/retroobj/internal/config"
	"github.com/retroenv/retroobj/internal/fileprocessor"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, emission, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	for _, file := range files {
		if ctx.Err() != nil {
			logger.Info("Operation cancelled")
			return
		}

		opts.Input = file
		if len(files) > 1 || opts.Output == "" {
			opts.Output = fileprocessor.GenerateOutputFilename(file, emission.Format)
		}

		if err := fileprocessor.ProcessFile(logger, opts, emission); err != nil {
			logger.Error("Object file generation failed", log.Err(err))
		}
	}
}
