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

package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/pkg/rpki/rrdp"
	"github.com/rpki-rp/validator/private/runmetrics"
)

// Status is the JSON representation of the metrics of one run.
type Status struct {
	LastUpdateDone    int64         `json:"lastUpdateDone"`
	LastUpdateDoneISO string        `json:"lastUpdateDoneISO"`
	RsyncComplete     bool          `json:"rsyncComplete"`
	TALs              []TALStatus   `json:"tals"`
	Rsync             []RsyncStatus `json:"rsync"`
	RRDP              []RRDPStatus  `json:"rrdp"`
}

// TALStatus are the counts of one trust anchor.
type TALStatus struct {
	Name string `json:"name"`
	ROAs uint32 `json:"roas"`
	VRPs uint32 `json:"vrps"`
}

// RsyncStatus is the retrieval status of one rsync module.
type RsyncStatus struct {
	Module   string  `json:"module"`
	Status   string  `json:"status"`
	Outcome  string  `json:"outcome"`
	Duration float64 `json:"duration"`
}

// RRDPStatus is the retrieval status of one RRDP server.
type RRDPStatus struct {
	NotifyURI string  `json:"notifyUri"`
	Status    string  `json:"status"`
	Outcome   string  `json:"outcome"`
	Serial    uint64  `json:"serial"`
	Session   string  `json:"session"`
	Duration  float64 `json:"duration"`
}

// NewStatus converts m into its JSON representation. Durations are in
// seconds.
func NewStatus(m *runmetrics.Metrics) Status {
	s := Status{
		LastUpdateDone:    m.Timestamp(),
		LastUpdateDoneISO: m.Time().Format(time.RFC3339),
		RsyncComplete:     m.RsyncComplete(),
		TALs:              []TALStatus{},
		Rsync:             []RsyncStatus{},
		RRDP:              []RRDPStatus{},
	}
	for _, t := range m.TALs() {
		s.TALs = append(s.TALs, TALStatus{Name: t.Name(), ROAs: t.ROAs, VRPs: t.VRPs})
	}
	for _, mod := range m.Rsync() {
		s.Rsync = append(s.Rsync, RsyncStatus{
			Module:   mod.Module,
			Status:   mod.Status.String(),
			Outcome:  mod.Outcome().String(),
			Duration: mod.Duration.Seconds(),
		})
	}
	for _, srv := range m.RRDP() {
		s.RRDP = append(s.RRDP, RRDPStatus{
			NotifyURI: srv.NotifyURI,
			Status:    rrdpStatusString(srv.NotifyStatus.String(), srv.PayloadStatus),
			Outcome:   srv.Outcome().String(),
			Serial:    srv.Serial,
			Session:   srv.Session,
			Duration:  srv.Duration.Seconds(),
		})
	}
	return s
}

// WriteJSON writes the status of m as indented JSON to w.
func WriteJSON(w io.Writer, m *runmetrics.Metrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewStatus(m)); err != nil {
		return serrors.Wrap("encoding status", err)
	}
	return nil
}

func rrdpStatusString(notify string, payload *rrdp.HTTPStatus) string {
	if payload == nil {
		return notify
	}
	return notify + "/" + payload.String()
}
