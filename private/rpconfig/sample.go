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

package rpconfig

const idSample = "rp-1"

const validationSample = `
# Path to the run report written by the fetchers and the validator. (required)
report = "/var/lib/rpki/run.yml"

# Directory with the trust anchor locators (*.tal). If set, every trust anchor
# named in the report must have a TAL in this directory. (default "")
tal_dir = ""

# Fail the run command with exit code 2 if not all rsync modules were fetched
# successfully. (default false)
strict = false

# Number of trust anchors processed concurrently. 0 means the number of CPUs.
# (default 0)
parallelism = 0

# Time between validation runs in serve mode. (default 10m)
interval = "10m"
`

const historySample = `
# Path to the run history database. If empty, no history is kept. (default "")
path = ""

# Number of most recent runs kept in the history. (default 1000)
keep_runs = 1000

# Time between prunes of the history in serve mode. (default 1h)
prune_interval = "1h"
`
