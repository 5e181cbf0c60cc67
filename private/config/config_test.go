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

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rpki-rp/validator/private/config"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type inner struct {
	config.NoDefaulter
	Path     string   `toml:"path,omitempty"`
	Interval duration `toml:"interval,omitempty"`
}

type outer struct {
	ID       string `toml:"id"`
	Inner    inner  `toml:"inner,omitempty"`
	Optional *inner `toml:"optional"`
	Ignored  string `toml:"-"`
	NoTag    string
	hidden   string `toml:"hidden"`
}

func TestKeys(t *testing.T) {
	expected := []string{
		"id",
		"inner.path",
		"inner.interval",
		"optional.path",
		"optional.interval",
	}
	assert.Equal(t, expected, config.Keys(&outer{}))
	assert.Equal(t, expected, config.Keys(outer{hidden: "x"}))
	assert.Nil(t, config.Keys("not a struct"))
	assert.Nil(t, config.Keys(nil))
}
