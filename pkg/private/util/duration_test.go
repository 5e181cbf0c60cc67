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

package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpki-rp/validator/pkg/private/util"
)

func TestParseDuration(t *testing.T) {
	tests := map[string]struct {
		input  string
		output time.Duration
		ok     bool
	}{
		"empty":          {input: ""},
		"no unit":        {input: "0"},
		"multiple units": {input: "1d12h"},
		"negative":       {input: "-5m"},
		"nanoseconds":    {input: "2ns", output: 2 * time.Nanosecond, ok: true},
		"microseconds":   {input: "33us", output: 33 * time.Microsecond, ok: true},
		"micro sign":     {input: "4444µs", output: 4444 * time.Microsecond, ok: true},
		"milliseconds":   {input: "55555ms", output: 55555 * time.Millisecond, ok: true},
		"seconds":        {input: "101s", output: 101 * time.Second, ok: true},
		"minutes":        {input: "102m", output: 102 * time.Minute, ok: true},
		"hours":          {input: "103h", output: 103 * time.Hour, ok: true},
		"days":           {input: "104d", output: 104 * 24 * time.Hour, ok: true},
		"weeks":          {input: "105w", output: 105 * 7 * 24 * time.Hour, ok: true},
		"years":          {input: "106y", output: 106 * 365 * 24 * time.Hour, ok: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := util.ParseDuration(tc.input)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.output, d)
		})
	}
}

func TestFmtDuration(t *testing.T) {
	tests := map[string]struct {
		input  time.Duration
		output string
	}{
		"zero":         {input: 0, output: "0ns"},
		"nanoseconds":  {input: 2 * time.Nanosecond, output: "2ns"},
		"microseconds": {input: 33 * time.Microsecond, output: "33us"},
		"milliseconds": {input: 44 * time.Millisecond, output: "44ms"},
		"seconds":      {input: 55 * time.Second, output: "55s"},
		"hours":        {input: 66 * time.Hour, output: "66h"},
		"days":         {input: 48 * time.Hour, output: "2d"},
		"weeks":        {input: 35 * 24 * time.Hour, output: "5w"},
		"years":        {input: 101 * 365 * 24 * time.Hour, output: "101y"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.output, util.FmtDuration(tc.input))
		})
	}
}

func TestDurWrap(t *testing.T) {
	var d util.DurWrap
	require.NoError(t, d.UnmarshalText([]byte("10m")))
	assert.Equal(t, 10*time.Minute, d.Duration)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "10m", string(text))
	assert.Error(t, d.Set("ten minutes"))
}
