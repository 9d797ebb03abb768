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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgate/admission/common/log/tag"
)

func TestObserved(t *testing.T) {
	logger, obs := NewObserved(t)
	logger.WithTags(tag.Policy("sliding_window")).Info("created", tag.MaxRequests(3))
	logger.Debug("debug is captured too")

	entries := obs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "created", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "sliding_window", ctx["policy"])
	assert.EqualValues(t, 3, ctx["max-requests"])
	assert.Contains(t, ctx, tag.LoggingCallAtKey)
}

func TestLoggedAfterCompletionDoesNotFail(t *testing.T) {
	var late func()
	t.Run("inner", func(t *testing.T) {
		logger := New(t).WithTags(tag.Component(tag.ComponentSweeper))
		late = func() { logger.Info("too late") }
	})
	// must not panic or fail the parent test
	late()
}
