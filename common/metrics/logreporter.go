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

package metrics

import (
	"io"
	"time"

	"github.com/uber-go/tally"

	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/tag"
)

// PolicyTagName is the metric tag holding the admission policy name.
const PolicyTagName = "policy"

type (
	// logReporter is a tally.StatsReporter that writes every reported value to a
	// Logger.  It is meant for short-lived tools that have no metrics backend,
	// where counters are reported once when the root scope is closed.
	logReporter struct {
		logger log.Logger
	}
)

var _ tally.StatsReporter = logReporter{}

// NewLogReporter returns a tally.StatsReporter that logs each metric at info level.
func NewLogReporter(logger log.Logger) tally.StatsReporter {
	return logReporter{logger: logger}
}

// NewLoggedRootScope creates a root scope reporting to logger.
// Values are reported every interval (never, if 0) and when the returned closer is closed.
func NewLoggedRootScope(logger log.Logger, prefix string, tags map[string]string, interval time.Duration) (tally.Scope, io.Closer) {
	return tally.NewRootScope(tally.ScopeOptions{
		Prefix:   prefix,
		Tags:     tags,
		Reporter: NewLogReporter(logger),
	}, interval)
}

func (r logReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.logger.Info("counter", tag.Dynamic("metric", name), tag.Dynamic("tags", tags), tag.Number(value))
}

func (r logReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.logger.Info("gauge", tag.Dynamic("metric", name), tag.Dynamic("tags", tags), tag.Dynamic("value", value))
}

func (r logReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.logger.Debug("timer", tag.Dynamic("metric", name), tag.Dynamic("tags", tags), tag.WaitDuration(interval))
}

func (r logReporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound,
	bucketUpperBound float64,
	samples int64,
) {
	r.logger.Info("histogram",
		tag.Dynamic("metric", name),
		tag.Dynamic("tags", tags),
		tag.Dynamic("bucket", [2]float64{bucketLowerBound, bucketUpperBound}),
		tag.Number(samples))
}

func (r logReporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound,
	bucketUpperBound time.Duration,
	samples int64,
) {
	r.logger.Info("histogram",
		tag.Dynamic("metric", name),
		tag.Dynamic("tags", tags),
		tag.Dynamic("bucket", [2]time.Duration{bucketLowerBound, bucketUpperBound}),
		tag.Number(samples))
}

func (r logReporter) Capabilities() tally.Capabilities {
	return r
}

func (r logReporter) Reporting() bool {
	return true
}

func (r logReporter) Tagging() bool {
	return true
}

func (r logReporter) Flush() {}
