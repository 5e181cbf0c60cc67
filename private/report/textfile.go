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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpki-rp/validator/pkg/private/serrors"
)

// WriteTextfile writes all metrics gathered from g to file in the text
// exposition format, for the node_exporter textfile collector. The file is
// replaced atomically, so the collector never reads a partial run.
func WriteTextfile(file string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(file, g); err != nil {
		return serrors.Wrap("writing metrics textfile", err, "file", file)
	}
	return nil
}
