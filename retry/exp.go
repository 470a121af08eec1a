// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"errors"
	"time"
)

// ErrInvalidArg is raised if an invalid argument is passed to a backoff strategy.
var ErrInvalidArg = errors.New("invalid argument")

type expBackoff struct {
	baseDelay time.Duration
	limit     int // 0 = forever
	maxDelay  time.Duration
	tryCount  int
}

var _ Backoff = &expBackoff{}

// NewExpBackoff builds an exponential backoff strategy.
// Valid maxDelay must be within a microsecond and one hour.
// Use limit=0 for unlimited delays.
func NewExpBackoff(baseDelay time.Duration, maxDelay time.Duration, limit int) (Backoff, error) {
	if maxDelay > time.Hour {
		return nil, ErrInvalidArg
	}
	if baseDelay <= 0 || baseDelay > maxDelay {
		return nil, ErrInvalidArg
	}
	if maxDelay < time.Microsecond {
		return nil, ErrInvalidArg
	}
	if limit < 0 {
		return nil, ErrInvalidArg
	}
	return &expBackoff{
		baseDelay: baseDelay,
		limit:     limit,
		maxDelay:  maxDelay,
	}, nil
}

// Next implements Backoff.
func (e *expBackoff) Next() (time.Duration, bool) {
	if e.limit != 0 && e.tryCount >= e.limit {
		return 0, true
	}
	e.tryCount++
	// Cap the shift so that long runs cannot overflow.
	shift := e.tryCount - 1
	if shift > 32 {
		shift = 32
	}
	delay := e.baseDelay << shift
	if delay <= 0 || delay > e.maxDelay {
		delay = e.maxDelay
	}
	return delay, false
}
