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

package runner

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/pkg/private/util"
	"github.com/rpki-rp/validator/pkg/rpki/rrdp"
	"github.com/rpki-rp/validator/pkg/rpki/rsync"
)

// Report is the output of the external collaborators for one run, as written
// to the run report file.
type Report struct {
	TALs  []TALEntry    `yaml:"tals"`
	Rsync []ModuleEntry `yaml:"rsync"`
	RRDP  []ServerEntry `yaml:"rrdp"`
}

// TALEntry are the counts the validator reports for one trust anchor.
type TALEntry struct {
	Name string `yaml:"name"`
	ROAs uint32 `yaml:"roas"`
	VRPs uint32 `yaml:"vrps"`
}

// ModuleEntry is the status the rsync collaborator reports for one module.
// A non-empty Error means the exit status could not be determined.
type ModuleEntry struct {
	Module   string   `yaml:"module"`
	ExitCode int      `yaml:"exit_code"`
	Error    string   `yaml:"error"`
	Duration Duration `yaml:"duration"`
}

// ServerEntry is the status the RRDP collaborator reports for one server.
type ServerEntry struct {
	NotifyURI     string   `yaml:"notify_uri"`
	Status        int      `yaml:"status"`
	Error         string   `yaml:"error"`
	PayloadStatus *int     `yaml:"payload_status"`
	PayloadError  string   `yaml:"payload_error"`
	Serial        uint64   `yaml:"serial"`
	Session       string   `yaml:"session"`
	Duration      Duration `yaml:"duration"`
}

// Duration is a time.Duration in the format of util.ParseDuration, e.g.,
// "800ms" or "2m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := util.ParseDuration(s)
	if err != nil {
		return serrors.Wrap("parsing duration", err, "value", s)
	}
	d.Duration = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return util.FmtDuration(d.Duration), nil
}

// LoadReport reads and validates the run report in file.
func LoadReport(file string) (*Report, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, serrors.Wrap("reading run report", err, "file", file)
	}
	return ParseReport(raw)
}

// ParseReport parses and validates a raw run report.
func ParseReport(raw []byte) (*Report, error) {
	var r Report
	if err := yaml.UnmarshalStrict(raw, &r); err != nil {
		return nil, serrors.Wrap("decoding run report", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks that every entry is identifiable.
func (r *Report) Validate() error {
	for i, t := range r.TALs {
		if t.Name == "" {
			return serrors.New("trust anchor without name", "index", i)
		}
	}
	for i, m := range r.Rsync {
		if m.Module == "" {
			return serrors.New("rsync entry without module", "index", i)
		}
	}
	for i, s := range r.RRDP {
		if s.NotifyURI == "" {
			return serrors.New("rrdp entry without notify_uri", "index", i)
		}
		if s.PayloadStatus != nil && s.PayloadError != "" {
			return serrors.New("rrdp entry with both payload_status and payload_error",
				"index", i, "notify_uri", s.NotifyURI)
		}
	}
	return nil
}

// ModuleMetrics converts the entry to the rsync record.
func (e ModuleEntry) ModuleMetrics() rsync.ModuleMetrics {
	m := rsync.ModuleMetrics{
		Module:   e.Module,
		Status:   rsync.Status{ExitCode: e.ExitCode},
		Duration: e.Duration.Duration,
	}
	if e.Error != "" {
		m.Status.Err = errors.New(e.Error)
	}
	return m
}

// ServerMetrics converts the entry to the RRDP record.
func (e ServerEntry) ServerMetrics() rrdp.ServerMetrics {
	m := rrdp.ServerMetrics{
		NotifyURI:    e.NotifyURI,
		NotifyStatus: httpStatus(e.Status, e.Error),
		Serial:       e.Serial,
		Session:      e.Session,
		Duration:     e.Duration.Duration,
	}
	switch {
	case e.PayloadError != "":
		s := httpStatus(0, e.PayloadError)
		m.PayloadStatus = &s
	case e.PayloadStatus != nil:
		s := httpStatus(*e.PayloadStatus, "")
		m.PayloadStatus = &s
	}
	return m
}

func httpStatus(code int, errMsg string) rrdp.HTTPStatus {
	if errMsg != "" {
		return rrdp.HTTPStatus{Err: errors.New(errMsg)}
	}
	return rrdp.HTTPStatus{Code: code}
}
