// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package util contains small helpers for configuration values.
package util

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rpki-rp/validator/pkg/private/serrors"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 365 * day
)

var durationRe = regexp.MustCompile(`^([0-9]+)(ns|us|µs|ms|s|m|h|d|w|y)$`)

var units = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  day,
	"w":  week,
	"y":  year,
}

// ParseDuration parses a duration made of a non-negative integer and exactly
// one unit. In addition to the units of time.ParseDuration, "d" (24h), "w"
// (7d) and "y" (365d) are supported.
func ParseDuration(s string) (time.Duration, error) {
	match := durationRe.FindStringSubmatch(s)
	if match == nil {
		return 0, serrors.New("invalid duration", "input", s)
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, serrors.Wrap("parsing duration", err, "input", s)
	}
	return time.Duration(n) * units[match[2]], nil
}

// FmtDuration formats d with the largest unit that represents it exactly.
func FmtDuration(d time.Duration) string {
	ordered := []struct {
		unit string
		dur  time.Duration
	}{
		{"y", year}, {"w", week}, {"d", day}, {"h", time.Hour}, {"m", time.Minute},
		{"s", time.Second}, {"ms", time.Millisecond}, {"us", time.Microsecond},
	}
	for _, u := range ordered {
		if d != 0 && d%u.dur == 0 {
			return strconv.FormatInt(int64(d/u.dur), 10) + u.unit
		}
	}
	return strconv.FormatInt(int64(d), 10) + "ns"
}
