package ui

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"igunfollow/pkg/unfollow"
)

// NewTable creates a rounded table that renders to w
func NewTable(w io.Writer) table.Writer {
	if w == nil {
		w = os.Stdout
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderSummary draws the final stats of a run
func RenderSummary(w io.Writer, result *unfollow.Result) string {
	t := NewTable(w)
	t.SetTitle("@" + displayName(result))
	t.AppendHeader(table.Row{"Stat", "Count"})
	t.AppendRows([]table.Row{
		{"Following", result.Following},
		{"Followers", result.Followers},
		{"Non-followers", len(result.NonReciprocal)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Unfollowed", result.Report.Succeeded},
		{"Failed", result.Report.Failed()},
		{"Not attempted", result.Report.NotAttempted},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Duration", result.Duration.Round(time.Millisecond).String()})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	return t.Render()
}

// RenderOutcomes lists each attempted account with its final state
func RenderOutcomes(w io.Writer, outcomes []unfollow.Outcome) string {
	t := NewTable(w)
	t.AppendHeader(table.Row{"#", "Handle", "Status", "HTTP"})
	for i, o := range outcomes {
		code := ""
		if o.StatusCode != 0 {
			code = strconv.Itoa(o.StatusCode)
		}
		t.AppendRow(table.Row{i + 1, "@" + o.Account.Handle, string(o.Status), code})
	}
	return t.Render()
}

func displayName(result *unfollow.Result) string {
	if result.Username != "" {
		return result.Username
	}
	return result.UserID
}
