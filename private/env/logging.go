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

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rpki-rp/validator/pkg/log"
)

// StartupVersion is the version of the binary. It is set at link time.
var StartupVersion = "dev"

// VersionInfo returns build version information.
func VersionInfo() string {
	revision, modified := "unknown", false
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}
	if modified {
		revision += "-dirty"
	}
	return fmt.Sprintf("  %s\n  %s\n  %s\n",
		fmt.Sprintf("Version:       %s", StartupVersion),
		fmt.Sprintf("Revision:      %s", revision),
		fmt.Sprintf("Go version:    %s", runtime.Version()),
	)
}

// LogAppStarted should be called by applications as soon as logging is
// initialized.
func LogAppStarted(name, id string) {
	info := fmt.Sprintf("=====================> Application started %s %s\n"+
		"%s  %s\n  %s\n",
		name,
		id,
		VersionInfo(),
		fmt.Sprintf("pid:           %d", os.Getpid()),
		fmt.Sprintf("cmd line:      %q", os.Args),
	)
	log.Info(info)
}

func LogAppStopped(name, id string) {
	log.Info(fmt.Sprintf("=====================> Application stopped %s %s", name, id))
}
