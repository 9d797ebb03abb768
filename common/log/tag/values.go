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

package tag

// predefined tag values use module-private types, so only the values below can be passed
type (
	valueTypeSysComponent string
	valueTypeSysLifecycle string
)

func (v valueTypeSysComponent) String() string { return string(v) }
func (v valueTypeSysLifecycle) String() string { return string(v) }

// Pre-defined values for TagSysComponent
const (
	ComponentSlidingWindow valueTypeSysComponent = "sliding-window-limiter"
	ComponentThrottle      valueTypeSysComponent = "fixed-interval-limiter"
	ComponentSweeper       valueTypeSysComponent = "sweeper"
	ComponentSimulator     valueTypeSysComponent = "flood-simulator"
)

// Pre-defined values for TagSysLifecycle
const (
	LifeCycleStarting valueTypeSysLifecycle = "Starting"
	LifeCycleStarted  valueTypeSysLifecycle = "Started"
	LifeCycleStopping valueTypeSysLifecycle = "Stopping"
	LifeCycleStopped  valueTypeSysLifecycle = "Stopped"
)
