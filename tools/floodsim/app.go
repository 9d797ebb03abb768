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

package floodsim

import (
	"io"
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log/loggerimpl"
	"github.com/flowgate/admission/common/metrics"
	"github.com/flowgate/admission/common/quotas"
	"github.com/flowgate/admission/common/quotas/policy"
	"github.com/flowgate/admission/tools/common/commoncli"
)

// Flags used to specify cli command line arguments
const (
	FlagPolicy      = "policy"
	FlagWindow      = "window"
	FlagMaxRequests = "max-requests"
	FlagInterval    = "interval"
	FlagMessages    = "messages"
	FlagUsers       = "users"
	FlagSeries      = "series"
	FlagMinPause    = "min-pause"
	FlagMaxPause    = "max-pause"
	FlagSeriesPause = "series-pause"
	FlagSeed        = "seed"
	FlagColor       = "color"
	FlagVerbose     = "verbose"
)

// NewApp builds the floodsim command line app.
// Simulation output goes to out, and the app's own help/errors to app.Writer/ErrWriter.
func NewApp(out io.Writer, timesource clock.TimeSource) *cli.App {
	defaults := DefaultConfig()
	app := cli.NewApp()
	app.Name = "floodsim"
	app.Usage = "replay a chat-message flood against a per-user admission limiter"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    FlagPolicy,
			Aliases: []string{"p"},
			Value:   string(quotas.PolicySlidingWindow),
			Usage:   "admission policy: sliding_window or fixed_interval",
		},
		&cli.DurationFlag{
			Name:  FlagWindow,
			Value: 10 * time.Second,
			Usage: "sliding window size",
		},
		&cli.IntFlag{
			Name:  FlagMaxRequests,
			Value: 1,
			Usage: "admissions allowed per user per window",
		},
		&cli.DurationFlag{
			Name:  FlagInterval,
			Value: 10 * time.Second,
			Usage: "minimum interval between admissions for fixed_interval",
		},
		&cli.IntFlag{
			Name:  FlagMessages,
			Value: defaults.Messages,
			Usage: "messages per series",
		},
		&cli.IntFlag{
			Name:  FlagUsers,
			Value: defaults.Users,
			Usage: "number of distinct users",
		},
		&cli.IntFlag{
			Name:  FlagSeries,
			Value: defaults.Series,
			Usage: "number of message series",
		},
		&cli.DurationFlag{
			Name:  FlagMinPause,
			Value: defaults.MinPause,
			Usage: "minimum random pause after each message",
		},
		&cli.DurationFlag{
			Name:  FlagMaxPause,
			Value: defaults.MaxPause,
			Usage: "maximum random pause after each message",
		},
		&cli.DurationFlag{
			Name:  FlagSeriesPause,
			Usage: "pause between series (default: 4s for sliding_window, --interval for fixed_interval)",
		},
		&cli.Int64Flag{
			Name:  FlagSeed,
			Usage: "random seed, 0 picks one from the current time",
		},
		&cli.BoolFlag{
			Name:  FlagColor,
			Usage: "color the admitted/rejected markers",
		},
		&cli.BoolFlag{
			Name:  FlagVerbose,
			Usage: "log every decision and the final metrics to stderr",
		},
	}
	app.Action = func(c *cli.Context) error {
		return run(c, out, timesource)
	}
	return app
}

func run(c *cli.Context, out io.Writer, timesource clock.TimeSource) error {
	p, err := policy.Parse(c.String(FlagPolicy))
	if err != nil {
		return commoncli.Problem("invalid --"+FlagPolicy, err)
	}

	logger := loggerimpl.NewNopLogger()
	if c.Bool(FlagVerbose) {
		logger, err = loggerimpl.NewDevelopment()
		if err != nil {
			return commoncli.Problem("could not create logger", err)
		}
	}

	cfg := policy.DefaultConfig(p)
	cfg.SlidingWindow.Window = c.Duration(FlagWindow)
	cfg.SlidingWindow.MaxRequests = c.Int(FlagMaxRequests)
	cfg.FixedInterval.MinInterval = c.Duration(FlagInterval)
	limiter, err := policy.New[string](cfg, quotas.WithTimeSource(timesource), quotas.WithLogger(logger))
	if err != nil {
		return commoncli.Problem("invalid limiter configuration", err)
	}

	scope, closer := metrics.NewLoggedRootScope(logger, "floodsim", map[string]string{metrics.PolicyTagName: p.String()}, 0)
	defer closer.Close()

	seriesPause := SeriesPause(cfg)
	if c.IsSet(FlagSeriesPause) {
		seriesPause = c.Duration(FlagSeriesPause)
	}

	seed := c.Int64(FlagSeed)
	if seed == 0 {
		seed = timesource.Now().UnixNano()
	}
	sim, err := NewSimulator(
		Config{
			Messages:    c.Int(FlagMessages),
			Users:       c.Int(FlagUsers),
			Series:      c.Int(FlagSeries),
			MinPause:    c.Duration(FlagMinPause),
			MaxPause:    c.Duration(FlagMaxPause),
			SeriesPause: seriesPause,
			Color:       c.Bool(FlagColor),
		},
		quotas.NewTrackedAdmitter[string](limiter, scope),
		title(p),
		out,
		logger,
		rand.New(rand.NewSource(seed)),
		timesource.Sleep,
	)
	if err != nil {
		return commoncli.Problem("invalid simulation configuration", err)
	}

	_, err = sim.Run(c.Context)
	return err
}

// SeriesPause is the default pause between series for cfg.Policy: one full
// MinInterval for fixed_interval, DefaultConfig().SeriesPause otherwise.
func SeriesPause(cfg policy.Config) time.Duration {
	if cfg.Policy == quotas.PolicyFixedInterval {
		return cfg.FixedInterval.MinInterval
	}
	return DefaultConfig().SeriesPause
}

func title(p quotas.Policy) string {
	switch p {
	case quotas.PolicyFixedInterval:
		return "Throttling"
	default:
		return "Sliding window"
	}
}
