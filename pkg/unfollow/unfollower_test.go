package unfollow

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igunfollow/internal/testserver"
	"igunfollow/pkg/auth"
	"igunfollow/pkg/config"
	"igunfollow/pkg/errors"
	"igunfollow/pkg/graph"
	"igunfollow/pkg/instagram"
	"igunfollow/pkg/logger"
	"igunfollow/pkg/ratelimit"
)

var owner = testserver.User{ID: "1000", Username: "owner"}

type eventLog struct {
	progress      map[graph.Relation]int
	nonReciprocal []graph.Account
	outcomes      []Outcome
	done          *Result
}

func (e *eventLog) ListProgress(relation graph.Relation, loaded int) {
	if e.progress == nil {
		e.progress = map[graph.Relation]int{}
	}
	e.progress[relation] = loaded
}
func (e *eventLog) NonReciprocal(accounts []graph.Account) { e.nonReciprocal = accounts }
func (e *eventLog) Outcome(_, _ int, o Outcome)            { e.outcomes = append(e.outcomes, o) }
func (e *eventLog) Done(r *Result)                         { e.done = r }

func fastOptions(obs Observer) Options {
	return Options{
		PageDelay:     ratelimit.None(),
		MutationDelay: ratelimit.None(),
		MaxPages:      100,
		Observer:      obs,
	}
}

func newClient(t *testing.T, srv *testserver.Server) *instagram.Client {
	t.Helper()
	session := &auth.Session{SessionID: testserver.SessionID, CSRFToken: testserver.CSRFToken}
	c, err := instagram.NewClient(session, instagram.ClientOptions{BaseURL: srv.URL(), Timeout: 5 * time.Second}, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestRunUnfollowsNonFollowers(t *testing.T) {
	mutual := testserver.Users("m", 1, 60)
	onlyFollowing := testserver.Users("x", 500, 70)
	following := append(append([]testserver.User{}, mutual[:30]...), onlyFollowing...)
	following = append(following, mutual[30:]...)

	srv := testserver.New(owner, mutual, following)
	defer srv.Close()

	events := &eventLog{}
	u := New(newClient(t, srv), fastOptions(events), logger.NewTestLogger())

	result, err := u.Run(context.Background(), "owner")
	require.NoError(t, err)

	assert.Equal(t, 60, result.Followers)
	assert.Equal(t, 130, result.Following)
	assert.Equal(t, "1000", result.UserID)
	assert.NotEmpty(t, result.RunID)
	if diff := cmp.Diff(testserver.Accounts(onlyFollowing), result.NonReciprocal); diff != "" {
		t.Errorf("non-reciprocal mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Report{Planned: 70, Succeeded: 70}, result.Report)
	assert.Len(t, srv.Unfollowed(), 70)
	assert.Equal(t, onlyFollowing[0].ID, srv.Unfollowed()[0], "mutations follow the following order")
	assert.Equal(t, 2, srv.Requests(testserver.KindFollowers))
	assert.Equal(t, 3, srv.Requests(testserver.KindFollowing))

	assert.Equal(t, 60, events.progress[graph.Followers])
	assert.Equal(t, 130, events.progress[graph.Following])
	assert.Len(t, events.nonReciprocal, 70)
	assert.Len(t, events.outcomes, 70)
	assert.Same(t, result, events.done)

	// everyone left follows back, so a second run has nothing to do
	again, err := u.Run(context.Background(), "owner")
	require.NoError(t, err)
	assert.True(t, again.NothingToDo)
}

func TestRunNothingToDo(t *testing.T) {
	users := testserver.Users("m", 1, 12)
	srv := testserver.New(owner, users, users)
	defer srv.Close()

	testLog := logger.NewTestLogger()
	events := &eventLog{}
	result, err := New(newClient(t, srv), fastOptions(events), testLog).Run(context.Background(), "owner")
	require.NoError(t, err)

	assert.True(t, result.NothingToDo)
	assert.Empty(t, result.NonReciprocal)
	assert.Empty(t, result.Outcomes)
	assert.Zero(t, srv.Requests(testserver.KindDestroy))
	assert.True(t, testLog.HasMessage(NothingToDo))
	assert.NotNil(t, events.done)
}

func TestRunUsesSelfIDWithoutUsername(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 2))
	defer srv.Close()

	opts := fastOptions(nil)
	opts.SelfID = owner.ID
	result, err := New(newClient(t, srv), opts, logger.NewNopLogger()).Run(context.Background(), "")
	require.NoError(t, err)

	assert.Zero(t, srv.Requests(testserver.KindProfile), "ds_user_id skips the lookup")
	assert.Equal(t, 2, result.Report.Succeeded)
}

func TestRunWithoutIdentity(t *testing.T) {
	srv := testserver.New(owner, nil, nil)
	defer srv.Close()

	_, err := New(newClient(t, srv), fastOptions(nil), logger.NewNopLogger()).Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestRunDryRun(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 5))
	defer srv.Close()

	opts := fastOptions(nil)
	opts.DryRun = true
	result, err := New(newClient(t, srv), opts, logger.NewNopLogger()).Run(context.Background(), "owner")
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Len(t, result.NonReciprocal, 5)
	assert.Equal(t, Report{Planned: 5, NotAttempted: 5}, result.Report)
	assert.Zero(t, srv.Requests(testserver.KindDestroy))
}

func TestRunConfirmDeclined(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 3))
	defer srv.Close()

	var asked []graph.Account
	opts := fastOptions(nil)
	opts.Confirm = func(accounts []graph.Account) bool {
		asked = accounts
		return false
	}
	result, err := New(newClient(t, srv), opts, logger.NewNopLogger()).Run(context.Background(), "owner")
	require.NoError(t, err)

	assert.True(t, result.Aborted)
	assert.Len(t, asked, 3)
	assert.Zero(t, srv.Requests(testserver.KindDestroy))
}

func TestRunMaxUnfollows(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 10))
	defer srv.Close()

	opts := fastOptions(nil)
	opts.MaxUnfollows = 4
	result, err := New(newClient(t, srv), opts, logger.NewNopLogger()).Run(context.Background(), "owner")
	require.NoError(t, err)

	assert.Len(t, result.NonReciprocal, 10)
	assert.Len(t, result.Planned, 4)
	assert.Equal(t, []string{"1", "2", "3", "4"}, srv.Unfollowed())
}

func TestRunMutationFailuresDoNotAbort(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 4))
	defer srv.Close()
	srv.FailUnfollow("2", http.StatusBadRequest)
	srv.DropUnfollow("3")

	result, err := New(newClient(t, srv), fastOptions(nil), logger.NewNopLogger()).Run(context.Background(), "owner")
	require.NoError(t, err)

	assert.Equal(t, Report{Planned: 4, Succeeded: 2, FailedResponse: 1, FailedError: 1}, result.Report)
	assert.Equal(t, []string{"1", "4"}, srv.Unfollowed())
	require.Len(t, result.Outcomes, 4)
	assert.Equal(t, StatusFailedResponse, result.Outcomes[1].Status)
	assert.Equal(t, StatusFailedError, result.Outcomes[2].Status)
}

func TestRunFetchErrorAborts(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 4))
	defer srv.Close()
	srv.SetErrorResponse(testserver.KindFollowing, http.StatusTooManyRequests)

	result, err := New(newClient(t, srv), fastOptions(nil), logger.NewNopLogger()).Run(context.Background(), "owner")
	assert.Nil(t, result)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRateLimit))
	assert.Zero(t, srv.Requests(testserver.KindDestroy))
}

func TestRunResolveErrorAborts(t *testing.T) {
	srv := testserver.New(owner, nil, nil)
	defer srv.Close()

	_, err := New(newClient(t, srv), fastOptions(nil), logger.NewNopLogger()).Run(context.Background(), "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Zero(t, srv.Requests(testserver.KindFollowers))
}

func TestRunPageLimit(t *testing.T) {
	srv := testserver.New(owner, testserver.Users("m", 1, 30), nil)
	defer srv.Close()
	srv.SetPageSize(5)

	opts := fastOptions(nil)
	opts.MaxPages = 3
	_, err := New(newClient(t, srv), opts, logger.NewNopLogger()).Run(context.Background(), "owner")
	assert.ErrorIs(t, err, graph.ErrPageLimit)
	assert.Equal(t, 3, srv.Requests(testserver.KindFollowers))
}

func TestRunInterrupted(t *testing.T) {
	srv := testserver.New(owner, nil, testserver.Users("x", 1, 5))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.OnUnfollow(func(id string) {
		if id == "2" {
			cancel()
		}
	})

	result, err := New(newClient(t, srv), fastOptions(nil), logger.NewNopLogger()).Run(ctx, "owner")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 5, result.Report.Planned)
	assert.Positive(t, result.Report.NotAttempted)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Instagram.DSUserID = "42"
	cfg.Unfollow.MaxUnfollows = 7

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "42", opts.SelfID)
	assert.Equal(t, 7, opts.MaxUnfollows)
	assert.Equal(t, cfg.Unfollow.StartDelay, opts.StartDelay)
	assert.IsType(t, &ratelimit.RandomInterval{}, opts.MutationDelay)
	assert.IsType(t, &ratelimit.FixedInterval{}, opts.PageDelay)

	cfg.Unfollow.RequestsPerMinute = 10
	assert.IsType(t, &ratelimit.Bucket{}, OptionsFromConfig(cfg).MutationDelay)
}
