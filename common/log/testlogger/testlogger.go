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

package testlogger

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/loggerimpl"
)

// TestingT is the subset of *testing.T used by this package.
type TestingT interface {
	zaptest.TestingT
	Cleanup(func()) // not currently part of zaptest.TestingT
}

// New is a helper to create a debug-level logger that writes to the test output.
func New(t TestingT) log.Logger {
	return loggerimpl.NewLogger(NewZap(t))
}

// NewZap makes a test-oriented zap logger.
//
// Background goroutines (e.g. sweepers) may log after the test has finished,
// which normally fails the test or races on its internals.  Once the test is
// cleaned up this logger writes to stderr instead, with a marker so the late
// log can still be found.
func NewZap(t TestingT) *zap.Logger {
	fallback, err := zap.NewDevelopment()
	if err != nil {
		t.Errorf("could not build a fallback zap logger: %v", err)
		t.FailNow()
	}
	core := &lateLogCore{
		name:      t.Name(),
		fallback:  fallback.Core(),
		testing:   zaptest.NewLogger(t).Core(),
		completed: atomic.NewBool(false),
	}
	t.Cleanup(func() { core.completed.Store(true) })
	return zap.New(core)
}

// NewObserved makes a test logger that both logs to `t` and collects logged
// entries for asserting in tests.
func NewObserved(t TestingT) (log.Logger, *observer.ObservedLogs) {
	obsCore, obs := observer.New(zapcore.DebugLevel)
	z := NewZap(t).WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, obsCore)
	}))
	return loggerimpl.NewLogger(z), obs
}

type lateLogCore struct {
	name      string
	fallback  zapcore.Core
	testing   zapcore.Core
	completed *atomic.Bool
}

var _ zapcore.Core = (*lateLogCore)(nil)

func (c *lateLogCore) current() zapcore.Core {
	if c.completed.Load() {
		return c.fallback
	}
	return c.testing
}

func (c *lateLogCore) Enabled(level zapcore.Level) bool {
	return c.current().Enabled(level)
}

func (c *lateLogCore) With(fields []zapcore.Field) zapcore.Core {
	// both cores must carry the fields, the choice between them is made at write time
	return &lateLogCore{
		name:      c.name,
		fallback:  c.fallback.With(fields),
		testing:   c.testing.With(fields),
		completed: c.completed,
	}
}

func (c *lateLogCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *lateLogCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.completed.Load() {
		entry.Message = fmt.Sprintf("logged after test %q completed: %v", c.name, entry.Message)
		return c.fallback.Write(entry, fields)
	}
	return c.testing.Write(entry, fields)
}

func (c *lateLogCore) Sync() error {
	return c.current().Sync()
}
