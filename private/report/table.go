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
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rpki-rp/validator/pkg/rpki/fetch"
	"github.com/rpki-rp/validator/private/runmetrics"
)

// WriteTable writes a human readable report of m to w. If colored is set,
// outcomes are highlighted.
func WriteTable(w io.Writer, m *runmetrics.Metrics, colored bool) {
	noColor := color.New()
	header := noColor
	outcomeColors := map[fetch.Outcome]*color.Color{
		fetch.Success:      noColor,
		fetch.Failure:      noColor,
		fetch.Undetermined: noColor,
	}
	if colored {
		header = color.New(color.FgHiBlack)
		outcomeColors[fetch.Success] = color.New(color.FgGreen)
		outcomeColors[fetch.Failure] = color.New(color.FgRed)
		outcomeColors[fetch.Undetermined] = color.New(color.FgYellow)
	}
	outcome := func(o fetch.Outcome) string {
		return outcomeColors[o].Sprint(o)
	}

	header.Fprintf(w, "Last update: %s (%d)\n",
		m.Time().Format(time.RFC3339), m.Timestamp())

	var tals [][]string
	for _, t := range m.TALs() {
		tals = append(tals, []string{
			t.Name(),
			strconv.FormatUint(uint64(t.ROAs), 10),
			strconv.FormatUint(uint64(t.VRPs), 10),
		})
	}
	roas, vrps := m.Totals()
	tals = append(tals, []string{
		"total",
		strconv.FormatUint(roas, 10),
		strconv.FormatUint(vrps, 10),
	})
	fmt.Fprintln(w)
	renderTable(w, []string{"TAL", "ROAS", "VRPS"}, tals)

	if mods := m.Rsync(); len(mods) > 0 {
		var rows [][]string
		for _, mod := range mods {
			rows = append(rows, []string{
				mod.Module,
				mod.Status.String(),
				outcome(mod.Outcome()),
				mod.Duration.String(),
			})
		}
		fmt.Fprintln(w)
		renderTable(w, []string{"MODULE", "STATUS", "OUTCOME", "DURATION"}, rows)
	}

	if srvs := m.RRDP(); len(srvs) > 0 {
		var rows [][]string
		for _, srv := range srvs {
			rows = append(rows, []string{
				srv.NotifyURI,
				rrdpStatusString(srv.NotifyStatus.String(), srv.PayloadStatus),
				outcome(srv.Outcome()),
				strconv.FormatUint(srv.Serial, 10),
				srv.Duration.String(),
			})
		}
		fmt.Fprintln(w)
		renderTable(w, []string{"SERVER", "STATUS", "OUTCOME", "SERIAL", "DURATION"}, rows)
	}

	fmt.Fprintln(w)
	complete := outcomeColors[fetch.Success].Sprint("yes")
	if !m.RsyncComplete() {
		complete = outcomeColors[fetch.Failure].Sprint("no")
	}
	fmt.Fprintf(w, "Rsync complete: %s\n", complete)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}
