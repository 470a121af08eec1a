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

// Package version reports the semantic version of the drinkinggame
// binary.
package version

import (
	"fmt"
	"regexp"
	"runtime"
	"runtime/debug"

	"golang.org/x/mod/semver"
)

// Build may be overridden at link time:
//
//	go build -ldflags "-X github.com/cockroachdb/field-eng-drinkinggame/version.Build=v1.2.3"
var Build = ""

// For example:
//
//	drinkinggame v1.2.3 (linux/amd64, go1.22.1)
//	drinkinggame v1.3.0-alpha.2 (darwin/arm64, go1.22.1)
var verPattern = regexp.MustCompile(`^drinkinggame (v\d+\.\d+\.\d+(-[^ ]+)?)`)

// Version holds a validated semantic version.
type Version struct {
	version string
}

// Parse extracts the semantic version from the output of [Banner] or
// accepts a bare version string such as "v1.2.3".
func Parse(s string) (*Version, error) {
	if found := verPattern.FindStringSubmatch(s); found != nil {
		s = found[1]
	}
	if !semver.IsValid(s) {
		return nil, fmt.Errorf("not a semver: %q", s)
	}
	return &Version{version: s}, nil
}

// Current returns the version of the running binary. It prefers the
// link-time Build value, then the module version recorded by the go
// tool. It returns nil for development builds.
func Current() *Version {
	if v, err := Parse(Build); err == nil {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v, err := Parse(info.Main.Version); err == nil {
			return v
		}
	}
	return nil
}

// Banner describes the running binary.
func Banner() string {
	v := "(devel)"
	if cur := Current(); cur != nil {
		v = cur.String()
	}
	return fmt.Sprintf("drinkinggame %s (%s/%s, %s)", v, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// String implements the Stringer interface.
func (v *Version) String() string {
	return v.version
}
