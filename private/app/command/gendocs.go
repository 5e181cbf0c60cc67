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

package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/rpki-rp/validator/pkg/private/serrors"
)

// NewGendocs returns a hidden command that writes markdown documentation for
// the whole command tree into a directory.
func NewGendocs(pather Pather) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gendocs <directory>",
		Short:   "Generate documentation",
		Example: fmt.Sprintf("  %s gendocs doc/manuals", pather.CommandPath()),
		Args:    cobra.ExactArgs(1),
		Hidden:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Root().DisableAutoGenTag = true

			directory := args[0]
			if err := os.MkdirAll(directory, 0o755); err != nil {
				return serrors.Wrap("creating directory", err, "dir", directory)
			}
			prepender := func(file string) string {
				name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
				return fmt.Sprintf("---\ntitle: %q\n---\n\n", strings.ReplaceAll(name, "_", " "))
			}
			link := func(name string) string { return name }
			err := doc.GenMarkdownTreeCustom(cmd.Root(), directory, prepender, link)
			if err != nil {
				return serrors.Wrap("generating documentation", err, "dir", directory)
			}
			return nil
		},
	}
	return cmd
}
