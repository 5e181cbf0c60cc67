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

// Package command contains cobra commands shared by the applications.
package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpki-rp/validator/private/config"
	"github.com/rpki-rp/validator/private/env"
)

// Pather returns the path to a command.
type Pather interface {
	CommandPath() string
}

// NewSample returns a command that prints the sample of cfg.
func NewSample(pather Pather, cfg config.Sampler) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Display sample configuration file",
		Example: fmt.Sprintf("  %s sample > rpki-metrics.toml",
			pather.CommandPath()),
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg.Sample(cmd.OutOrStdout(), nil, nil)
		},
	}
}

// NewVersion returns a command that prints the version information.
func NewVersion(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show the version information",
		Example: fmt.Sprintf("  %s version", pather.CommandPath()),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), env.VersionInfo())
		},
	}
}
