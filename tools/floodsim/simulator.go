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

// Package floodsim replays a synthetic chat-message flood against an admission
// limiter and prints one line per message, to show how a policy behaves.
package floodsim

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/tag"
	"github.com/flowgate/admission/common/quotas"
)

type (
	// Config describes the message stream.
	Config struct {
		// Messages is the number of messages in each series.
		Messages int `validate:"min=1"`
		// Users is the number of distinct senders, messages go round-robin starting at user 2.
		Users int `validate:"min=1"`
		// Series is the number of message series, separated by SeriesPause.
		Series int `validate:"min=1"`
		// MinPause and MaxPause bound the random pause after each message.
		MinPause time.Duration `validate:"min=0"`
		MaxPause time.Duration `validate:"min=0"`
		// SeriesPause is the pause between two series.
		SeriesPause time.Duration `validate:"min=0"`
		// Color enables colored admitted/rejected markers.
		Color bool
	}

	// Simulator sends the configured stream through an Admitter.
	Simulator struct {
		cfg      Config
		admitter quotas.Admitter[string]
		title    string
		out      io.Writer
		logger   log.Logger
		random   *rand.Rand
		pause    func(time.Duration)

		admittedMark func(a ...interface{}) string
		rejectedMark func(a ...interface{}) string
	}

	// Result summarizes a run.
	Result struct {
		Admitted int
		Rejected int
	}
)

// DefaultConfig matches the classic demo: two series of 10 messages from 5 users,
// 0.1-1s between messages, 4s between series.
func DefaultConfig() Config {
	return Config{
		Messages:    10,
		Users:       5,
		Series:      2,
		MinPause:    100 * time.Millisecond,
		MaxPause:    time.Second,
		SeriesPause: 4 * time.Second,
	}
}

// Validate returns an error wrapping quotas.ErrInvalidConfig if the stream is unusable.
func (c Config) Validate() error {
	if err := quotas.ValidateConfig("flood simulation", c); err != nil {
		return err
	}
	if c.MaxPause < c.MinPause {
		return quotas.InvalidConfigf("flood simulation", "max pause %v is less than min pause %v", c.MaxPause, c.MinPause)
	}
	return nil
}

// NewSimulator builds a Simulator.  pause is called between messages and
// between series; it is typically a TimeSource's Sleep.
func NewSimulator(
	cfg Config,
	admitter quotas.Admitter[string],
	title string,
	out io.Writer,
	logger log.Logger,
	random *rand.Rand,
	pause func(time.Duration),
) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	admitted := color.New(color.FgGreen)
	rejected := color.New(color.FgRed)
	if cfg.Color {
		admitted.EnableColor()
		rejected.EnableColor()
	} else {
		admitted.DisableColor()
		rejected.DisableColor()
	}
	return &Simulator{
		cfg:          cfg,
		admitter:     admitter,
		title:        title,
		out:          out,
		logger:       logger.WithTags(tag.Component(tag.ComponentSimulator)),
		random:       random,
		pause:        pause,
		admittedMark: admitted.SprintFunc(),
		rejectedMark: rejected.SprintFunc(),
	}, nil
}

// Run sends every series, and stops early if ctx is canceled.
func (s *Simulator) Run(ctx context.Context) (Result, error) {
	var res Result
	s.printf("\n=== Message flow simulation (%s) ===\n", s.title)
	messageID := 0
	for series := 0; series < s.cfg.Series; series++ {
		if series > 0 {
			s.printf("\nWaiting for %v...\n", s.cfg.SeriesPause)
			s.sleep(s.cfg.SeriesPause)
			s.printf("\n=== New series of messages after waiting ===\n")
		}
		for i := 0; i < s.cfg.Messages; i++ {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("simulation interrupted after %d messages: %w", messageID, err)
			}
			messageID++
			user := strconv.Itoa(messageID%s.cfg.Users + 1)
			if s.send(messageID, user) {
				res.Admitted++
			} else {
				res.Rejected++
			}
			s.sleep(s.randomPause())
		}
	}
	s.logger.Info("simulation complete", tag.Counter(res.Admitted+res.Rejected), tag.Dynamic("admitted", res.Admitted))
	return res, nil
}

func (s *Simulator) send(messageID int, user string) bool {
	admitted := s.admitter.RecordAndAdmit(user)
	wait := s.admitter.TimeUntilNextAllowed(user)
	s.logger.Debug("message sent", tag.Identity(user), tag.Admitted(admitted), tag.WaitDuration(wait))

	status := s.admittedMark("✓")
	if !admitted {
		status = s.rejectedMark(fmt.Sprintf("× (waiting %.1fs)", wait.Seconds()))
	}
	s.printf("Message %2d | User %s | %s\n", messageID, user, status)
	return admitted
}

func (s *Simulator) randomPause() time.Duration {
	spread := s.cfg.MaxPause - s.cfg.MinPause
	if spread <= 0 {
		return s.cfg.MinPause
	}
	return s.cfg.MinPause + time.Duration(s.random.Int63n(int64(spread)+1))
}

func (s *Simulator) sleep(d time.Duration) {
	if d > 0 {
		s.pause(d)
	}
}

func (s *Simulator) printf(format string, args ...interface{}) {
	// output is best-effort, a broken pipe should not change admission behavior
	_, _ = fmt.Fprintf(s.out, format, args...)
}
