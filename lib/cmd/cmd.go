// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd helps define reusable functions that can be exposed as
// [sub]commands.
package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// A RunFunc runs a command with the given args, and returns an exit
// code.
type RunFunc func(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int

// A Handler can run a command with the given args, returning an exit
// code.
type Handler interface {
	RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int
}

// RunCommand implements Handler by calling the wrapped func.
func (f RunFunc) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return f(prog, args, stdin, stdout, stderr)
}

// Version returns a Handler that prints the given version string.
func Version(version string) Handler {
	return RunFunc(func(prog string, args []string, _ io.Reader, stdout, _ io.Writer) int {
		prog = strings.TrimSuffix(prog, " -version")
		prog = strings.TrimSuffix(prog, " --version")
		fmt.Fprintf(stdout, "%s %s\n", prog, version)
		return 0
	})
}

// Multi returns a Handler that looks up its first argument in m, and
// runs the resulting Handler with the remaining args.
//
// Example:
//
//	os.Exit(Multi(map[string]Handler{
//	        "foobar": RunFunc(func(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
//	                fmt.Println(args[0])
//	                return 2
//	        }),
//	}).RunCommand("/usr/bin/multi", []string{"foobar", "baz"}, os.Stdin, os.Stdout, os.Stderr))
//
// ...prints "baz" and exits 2.
func Multi(m map[string]Handler) Handler {
	return RunFunc(func(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
		if len(args) < 1 {
			fmt.Fprintf(stderr, "usage: %s command [args]\n", prog)
			multiUsage(stderr, m)
			return 2
		}
		if cmd, ok := m[args[0]]; !ok {
			fmt.Fprintf(stderr, "%s: unrecognized command %q\n", prog, args[0])
			multiUsage(stderr, m)
			return 2
		} else {
			return cmd.RunCommand(prog+" "+args[0], args[1:], stdin, stdout, stderr)
		}
	})
}

func multiUsage(stderr io.Writer, m map[string]Handler) {
	var subcommands []string
	for sc := range m {
		if strings.HasPrefix(sc, "-") {
			// Some subcommands have alternate versions
			// like "--version" for compatibility. Don't
			// clutter the subcommand summary with those.
			continue
		}
		subcommands = append(subcommands, sc)
	}
	sort.Strings(subcommands)
	fmt.Fprintf(stderr, "\nAvailable commands:\n")
	for _, sc := range subcommands {
		fmt.Fprintf(stderr, "    %s\n", sc)
	}
}
