// The MIT License (MIT)

// Copyright (c) 2017-2020 Uber Technologies Inc.

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package commoncli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	colorRed     = color.New(color.FgRed).SprintFunc()
	colorMagenta = color.New(color.FgMagenta).SprintFunc()

	// replaced in tests
	osExit           = os.Exit
	stderr io.Writer = os.Stderr
)

// ExitHandler converts errors that urfave/cli did not handle into a nicely
// printed message, and an appropriate os.Exit call to ensure this func never
// returns from either branch.
//
// This should be used instead of an in-CLI ExitErrHandler, as using that still
// leaves a dangling `err` return value from *cli.App.Run().
func ExitHandler(err error) {
	if err == nil {
		osExit(0)
		return
	}
	// ignore write errors, there is nowhere else to report them
	_ = printErr(err, stderr)
	osExit(1)
}

// printErr writes the top-level message, then each wrapped cause on its own line
// with the parts already printed above it trimmed off.
func printErr(err error, to io.Writer) (writeErr error) {
	write := func(format string, a ...any) {
		if writeErr != nil {
			return
		}
		_, writeErr = fmt.Fprintf(to, format, a...)
	}

	var chain []error
	for current := err; current != nil && len(chain) < 1000; current = errors.Unwrap(current) {
		chain = append(chain, current)
	}

	messages := make([]string, len(chain))
	for i, e := range chain {
		if p, ok := e.(*printableErr); ok {
			messages[i] = p.display
		} else {
			messages[i] = e.Error()
		}
		if i > 0 {
			// "outer: inner" is by far the most common wrapping, strip the repeated inner part
			messages[i-1] = strings.TrimSuffix(
				strings.TrimSpace(strings.TrimSuffix(messages[i-1], e.Error())),
				":",
			)
		}
	}

	var top *printableErr
	if errors.As(err, &top) {
		write("%s %s\n", colorRed("Error:"), top.display)
	} else {
		write("%s %s\n", colorRed("Error:"), messages[0])
	}

	var details []string
	for i, msg := range messages {
		if (top != nil && chain[i] == error(top)) || (top == nil && i == 0) || msg == "" {
			continue
		}
		details = append(details, msg)
	}
	if len(details) == 0 {
		return
	}
	write("%s\n", colorMagenta("Error details:"))
	for _, d := range details {
		write("  %s\n", d)
	}
	return
}

// Problem returns a typed error that will report this message "nicely" to the
// user if it exits the CLI app.  The message will be used as the top-level
// "Error: ..." string regardless of where in the error stack it is, and other
// wrapped errors will be printed line by line beneath it.
func Problem(msg string, err error) error {
	return &printableErr{msg, err}
}

type printableErr struct {
	display string
	cause   error
}

func (p *printableErr) Error() string {
	if p.cause == nil {
		return p.display
	}
	return p.display + ": " + p.cause.Error()
}

func (p *printableErr) Unwrap() error {
	return p.cause
}
