// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scheduler

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/workflowsim/minmin/lib/cmd"
	"github.com/workflowsim/minmin/lib/ctxlog"
	"github.com/workflowsim/minmin/lib/workflow"
)

// Command implements the subcommand "schedule <input-file>".
var Command = command{}

type command struct {
	outputPath string
}

// RunCommand loads a workflow document, schedules it, and writes the
// report.
func (c command) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := ctxlog.New(stderr, "text", "info")
	var err error
	defer func() {
		if err != nil {
			logger.Error(err.Error())
		}
	}()

	exitcode, err := c.schedule(prog, args, logger, stdin, stdout, stderr)
	return exitcode
}

func (c command) schedule(prog string, args []string, logger *logrus.Logger, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `
Usage:
  %s [options ...] <input-file>

  This program computes a static placement of a workflow of tasks
  onto a pool of virtual machines using a two-phase Min-Min list
  scheduling heuristic, and reports the resulting task allocation,
  EST/EFT tables, and QoS metrics (makespan, load balancing, speedup,
  efficiency, resource utilization).

  The input file is a JSON or YAML document listing the tasks, their
  dependencies, the cloud servers and their VMs, the execution time
  table, and the cross-server communication times. Pass "-" to read
  the document from stdin.

Options:
`, prog)
		flags.PrintDefaults()
	}
	loglevel := flags.String("log-level", "info", "logging `level` (debug, info, ...)")
	flags.StringVar(&c.outputPath, "output", "", "write the report to `file` instead of stdout")
	if ok, code := cmd.ParseFlags(flags, prog, args, "input-file", stderr); !ok {
		return code, nil
	}
	if flags.NArg() != 1 {
		flags.SetOutput(stderr)
		flags.Usage()
		return 2, fmt.Errorf("error: expected exactly one input file, got %d arguments", flags.NArg())
	}
	lvl, err := logrus.ParseLevel(*loglevel)
	if err != nil {
		return 2, err
	}
	logger.SetLevel(lvl)

	rdr := stdin
	if path := flags.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return 1, err
		}
		defer f.Close()
		rdr = f
	}
	wf, err := workflow.Load(rdr)
	if err != nil {
		return 1, fmt.Errorf("error loading workflow document: %w", err)
	}

	ctx := ctxlog.Context(context.Background(), logger)
	res := New(ctx, wf, nil).Run()

	out := stdout
	if c.outputPath != "" {
		f, err := os.Create(c.outputPath)
		if err != nil {
			return 1, err
		}
		defer f.Close()
		out = f
	}
	err = WriteReport(out, wf, res)
	if err != nil {
		return 1, fmt.Errorf("error writing report: %w", err)
	}
	return 0, nil
}
