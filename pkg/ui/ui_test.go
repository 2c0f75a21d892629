package ui

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igunfollow/pkg/graph"
	"igunfollow/pkg/unfollow"
)

func account(handle string) graph.Account {
	return graph.Account{ID: handle + "-id", Handle: handle, FullName: strings.ToUpper(handle)}
}

func TestProgressPrintsEvents(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false, true)

	p.ListProgress(graph.Followers, 50)
	p.ListProgress(graph.Followers, 73)
	p.NonReciprocal([]graph.Account{account("alice"), account("bob")})
	p.Outcome(1, 2, unfollow.Outcome{Account: account("alice"), Status: unfollow.StatusSucceeded, StatusCode: http.StatusOK})
	p.Outcome(2, 2, unfollow.Outcome{Account: account("bob"), Status: unfollow.StatusFailedResponse, StatusCode: http.StatusBadRequest})

	out := buf.String()
	assert.Contains(t, out, "Loaded 73 users...")
	assert.Contains(t, out, "2 accounts don't follow you back")
	assert.Contains(t, out, "@alice")
	assert.Contains(t, out, "(ALICE)")
	assert.Contains(t, out, "✓ Unfollowed alice (1/2)")
	assert.Contains(t, out, "✗ Failed to unfollow bob (2/2): HTTP 400")
	assert.Equal(t, 73, p.Loaded(graph.Followers))
}

func TestProgressQuietKeepsFailures(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, true, false)

	p.ListProgress(graph.Following, 10)
	p.NonReciprocal([]graph.Account{account("carol")})
	p.Outcome(1, 2, unfollow.Outcome{Account: account("carol"), Status: unfollow.StatusSucceeded})
	p.Outcome(2, 2, unfollow.Outcome{Account: account("dave"), Status: unfollow.StatusFailedError, Err: errors.New("connection reset")})
	p.Done(&unfollow.Result{NothingToDo: true})

	out := buf.String()
	assert.NotContains(t, out, "Loaded")
	assert.NotContains(t, out, "Unfollowed carol")
	assert.Contains(t, out, "✗ Failed to unfollow dave (2/2): connection reset")
	assert.Equal(t, 10, p.Loaded(graph.Following))
}

func TestProgressDone(t *testing.T) {
	tests := []struct {
		name   string
		result *unfollow.Result
		want   string
	}{
		{"nothing to do", &unfollow.Result{NothingToDo: true}, unfollow.NothingToDo},
		{"dry run", &unfollow.Result{DryRun: true, Planned: []graph.Account{account("a")}}, "would unfollow 1 accounts"},
		{"aborted", &unfollow.Result{Aborted: true}, "nobody was unfollowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewProgress(&buf, false, false).Done(tt.result)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	result := &unfollow.Result{
		Username:      "owner",
		Following:     130,
		Followers:     60,
		NonReciprocal: make([]graph.Account, 70),
		Report:        unfollow.Report{Planned: 70, Succeeded: 66, FailedResponse: 3, FailedError: 1},
		Duration:      1500 * time.Millisecond,
	}

	rendered := RenderSummary(&buf, result)
	assert.Contains(t, buf.String(), rendered)
	for _, want := range []string{"@owner", "Following", "130", "Followers", "Non-followers", "70", "Unfollowed", "66", "Failed", "Not attempted", "1.5s"} {
		assert.Contains(t, rendered, want)
	}
}

func TestRenderOutcomes(t *testing.T) {
	rendered := RenderOutcomes(nil, []unfollow.Outcome{
		{Account: account("alice"), Status: unfollow.StatusSucceeded, StatusCode: 200},
		{Account: account("bob"), Status: unfollow.StatusFailedError},
	})
	assert.Contains(t, rendered, "@alice")
	assert.Contains(t, rendered, "succeeded")
	assert.Contains(t, rendered, "failed-error")
}

func TestConfirmPrompt(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		confirm := ConfirmPrompt(strings.NewReader(tt.input), &buf)
		assert.Equal(t, tt.want, confirm([]graph.Account{account("a"), account("b")}), "input %q", tt.input)
		assert.Contains(t, buf.String(), "Unfollow 2 accounts?")
	}
}

type fakeSender struct {
	titles   []string
	messages []string
}

func (f *fakeSender) Send(title, message string) error {
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return nil
}

func TestNotifierRunFinished(t *testing.T) {
	sender := &fakeSender{}
	var buf bytes.Buffer
	n := NewNotifierWithSender(sender, &buf, true)

	n.RunFinished(&unfollow.Result{Report: unfollow.Report{Planned: 5, Succeeded: 5}})
	n.RunFinished(&unfollow.Result{Report: unfollow.Report{Planned: 5, Succeeded: 3, FailedResponse: 2}})
	n.RunFinished(&unfollow.Result{DryRun: true})
	n.RunFinished(&unfollow.Result{NothingToDo: true})

	require.Len(t, sender.messages, 3)
	assert.Equal(t, "Unfollowed 5 accounts", sender.messages[0])
	assert.Equal(t, "Unfollowed 3 of 5 accounts, 2 failed", sender.messages[1])
	assert.Equal(t, unfollow.NothingToDo, sender.messages[2])
	assert.Contains(t, buf.String(), "Unfollowed 5 accounts")
}

func TestNotifierDisabledOnlyPrints(t *testing.T) {
	sender := &fakeSender{}
	var buf bytes.Buffer
	NewNotifierWithSender(sender, &buf, false).SendSuccess("done", "all good")

	assert.Empty(t, sender.messages)
	assert.Contains(t, buf.String(), "all good")
}

func TestPrintHelpersRespectQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	defer SetQuiet(false)

	PrintInfo("Account", "owner")
	PrintError("Request failed", "timeout")
	PrintWarning("Slow down")
	SetQuiet(true)
	PrintSuccess("hidden")
	PrintWarning("also hidden")
	PrintError("Still shown")

	out := buf.String()
	assert.Contains(t, out, "Account")
	assert.Contains(t, out, "owner")
	assert.Contains(t, out, "Request failed: timeout")
	assert.Contains(t, out, "Slow down")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Still shown")
}
