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

package env

const generalSample = `
# The ID of the instance. (required)
id = "%s"

# Directory that relative paths (TAL directory, run report, history
# database) are resolved against. (default "")
config_dir = ""
`

const metricsSample = `
# The address to serve /metrics, /status and /summary on (host:port or
# ip:port or :port). If not set, nothing is served. (default "")
prometheus = ""

# File the run command writes the metrics of the run to, for the
# node_exporter textfile collector. The name must end in ".prom". If not
# set, no file is written. (default "")
textfile = ""
`

const tracingSample = `
# Enable the tracing. (default false)
enabled = false
# Enable debug mode. (default false)
debug = false
# Address of the local agent that handles the reported traces.
# (default: localhost:6831)
agent = "localhost:6831"
`
