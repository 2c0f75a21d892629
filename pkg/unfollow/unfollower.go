package unfollow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"igunfollow/pkg/config"
	"igunfollow/pkg/graph"
	"igunfollow/pkg/instagram"
	"igunfollow/pkg/logger"
	"igunfollow/pkg/ratelimit"
)

// NothingToDo is reported when every followed account follows back
const NothingToDo = "Everyone follows you back! Nothing to do."

// ErrNoIdentity is returned when neither a username nor a user id is known
var ErrNoIdentity = errors.New("no username or user id to run for")

// API is the part of the Instagram client a run needs
type API interface {
	Mutator
	ResolveUser(ctx context.Context, username string) (*instagram.UserInfo, error)
	FollowersSource(userID string, count int) graph.PageSource
	FollowingSource(userID string, count int) graph.PageSource
}

// Observer receives progress as a run advances. Calls happen on the run's
// goroutine, in order.
type Observer interface {
	ListProgress(relation graph.Relation, loaded int)
	NonReciprocal(accounts []graph.Account)
	Outcome(index, total int, outcome Outcome)
	Done(result *Result)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) ListProgress(graph.Relation, int) {}
func (NopObserver) NonReciprocal([]graph.Account)    {}
func (NopObserver) Outcome(int, int, Outcome)        {}
func (NopObserver) Done(*Result)                     {}

// Options controls one run
type Options struct {
	PageSize     int
	PageDelay    ratelimit.Limiter
	MaxPages     int
	MaxItems     int
	FetchTimeout time.Duration

	MutationDelay ratelimit.Limiter
	StartDelay    time.Duration
	ErrorCooldown time.Duration
	MaxUnfollows  int
	DryRun        bool

	// SelfID skips the profile lookup when no username is given
	SelfID string

	// Confirm is asked once before the first mutation. Returning false
	// ends the run without unfollowing anyone.
	Confirm func(accounts []graph.Account) bool

	Observer Observer
}

// OptionsFromConfig builds run options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	var mutationDelay ratelimit.Limiter = ratelimit.Jitter(cfg.Unfollow.MinDelay, cfg.Unfollow.MaxDelay)
	if cfg.Unfollow.RequestsPerMinute > 0 {
		mutationDelay = ratelimit.TokenBucket(cfg.Unfollow.RequestsPerMinute, 1)
	}

	return Options{
		PageSize:      cfg.Fetch.PageSize,
		PageDelay:     ratelimit.Fixed(cfg.Fetch.PageDelay),
		MaxPages:      cfg.Fetch.MaxPages,
		MaxItems:      cfg.Fetch.MaxItems,
		FetchTimeout:  cfg.Fetch.Timeout,
		MutationDelay: mutationDelay,
		StartDelay:    cfg.Unfollow.StartDelay,
		ErrorCooldown: cfg.Unfollow.ErrorCooldown,
		MaxUnfollows:  cfg.Unfollow.MaxUnfollows,
		DryRun:        cfg.Unfollow.DryRun,
		SelfID:        cfg.Instagram.DSUserID,
	}
}

// Result describes a finished run
type Result struct {
	RunID    string
	Username string
	UserID   string

	Following     int
	Followers     int
	NonReciprocal []graph.Account

	// Planned is the prefix of NonReciprocal the loop was given
	Planned  []graph.Account
	Outcomes []Outcome
	Report   Report

	DryRun      bool
	Aborted     bool
	NothingToDo bool

	StartedAt time.Time
	Duration  time.Duration
}

// Unfollower runs the resolve, fetch, diff and unfollow stages in sequence
type Unfollower struct {
	api    API
	opts   Options
	logger logger.Logger
}

// New creates an Unfollower
func New(api API, opts Options, log logger.Logger) *Unfollower {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = instagram.DefaultPageSize
	}
	return &Unfollower{api: api, opts: opts, logger: log}
}

// Run unfollows every account username follows that does not follow back.
// A failure while resolving or listing aborts the run before any mutation.
// Failed mutations are recorded in the result and never abort it. If ctx is
// cancelled during the mutation stage the partial result is returned
// together with the context error.
func (u *Unfollower) Run(ctx context.Context, username string) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Username:  username,
		DryRun:    u.opts.DryRun,
		StartedAt: time.Now(),
	}
	log := u.logger.WithField("run_id", result.RunID)

	userID, err := u.resolve(ctx, username, log)
	if err != nil {
		return nil, err
	}
	result.UserID = userID

	followers, err := u.fetch(ctx, graph.Followers, u.api.FollowersSource(userID, u.opts.PageSize), log)
	if err != nil {
		return nil, err
	}
	following, err := u.fetch(ctx, graph.Following, u.api.FollowingSource(userID, u.opts.PageSize), log)
	if err != nil {
		return nil, err
	}

	result.Followers = len(followers)
	result.Following = len(following)
	result.NonReciprocal = graph.NotFollowingBack(followers, following)

	log.InfoWithFields("connection lists compared", map[string]interface{}{
		"following":     result.Following,
		"followers":     result.Followers,
		"non_followers": len(result.NonReciprocal),
	})
	u.opts.Observer.NonReciprocal(result.NonReciprocal)

	if len(result.NonReciprocal) == 0 {
		result.NothingToDo = true
		log.Info(NothingToDo)
		return u.finish(result), nil
	}

	result.Planned = result.NonReciprocal
	if u.opts.MaxUnfollows > 0 && len(result.Planned) > u.opts.MaxUnfollows {
		result.Planned = result.Planned[:u.opts.MaxUnfollows]
	}
	result.Report = Summarize(nil, len(result.Planned))

	if u.opts.DryRun {
		log.WithField("planned", len(result.Planned)).Info("dry run, nothing unfollowed")
		return u.finish(result), nil
	}

	if u.opts.Confirm != nil && !u.opts.Confirm(result.Planned) {
		result.Aborted = true
		log.Info("unfollow cancelled by user")
		return u.finish(result), nil
	}

	loop := &Loop{
		Mutator:       u.api,
		Delay:         u.opts.MutationDelay,
		StartDelay:    u.opts.StartDelay,
		ErrorCooldown: u.opts.ErrorCooldown,
		Logger:        log,
	}
	result.Outcomes = loop.Run(ctx, result.Planned, u.opts.Observer)
	result.Report = Summarize(result.Outcomes, len(result.Planned))

	log.InfoWithFields("unfollow finished", map[string]interface{}{
		"unfollowed":      result.Report.Succeeded,
		"failed_response": result.Report.FailedResponse,
		"failed_error":    result.Report.FailedError,
		"not_attempted":   result.Report.NotAttempted,
	})

	u.finish(result)
	if err := ctx.Err(); err != nil && result.Report.NotAttempted > 0 {
		return result, fmt.Errorf("unfollow interrupted: %w", err)
	}
	return result, nil
}

func (u *Unfollower) finish(result *Result) *Result {
	result.Duration = time.Since(result.StartedAt)
	u.opts.Observer.Done(result)
	return result
}

func (u *Unfollower) resolve(ctx context.Context, username string, log logger.Logger) (string, error) {
	if username == "" {
		if u.opts.SelfID == "" {
			return "", ErrNoIdentity
		}
		log.WithField("user_id", u.opts.SelfID).Debug("using ds_user_id from session")
		return u.opts.SelfID, nil
	}

	info, err := u.api.ResolveUser(ctx, username)
	if err != nil {
		log.WithError(err).WithField("username", username).Error("failed to resolve user")
		return "", fmt.Errorf("resolve user: %w", err)
	}
	log.WithFields(map[string]interface{}{"username": username, "user_id": info.ID}).Info("resolved user")
	return info.ID, nil
}

func (u *Unfollower) fetch(ctx context.Context, relation graph.Relation, source graph.PageSource, log logger.Logger) ([]graph.Account, error) {
	if u.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.FetchTimeout)
		defer cancel()
	}

	list, err := graph.FetchAll(ctx, relation, source, graph.FetchOptions{
		PageDelay: u.opts.PageDelay,
		MaxPages:  u.opts.MaxPages,
		MaxItems:  u.opts.MaxItems,
		OnPage: func(l *graph.ConnectionList) {
			u.opts.Observer.ListProgress(relation, l.Len())
		},
	})
	if err != nil {
		log.WithError(err).WithField("relation", string(relation)).Error("failed to fetch connections")
		return nil, err
	}

	if dupes := graph.CountDuplicates(list.Accounts); dupes > 0 {
		log.WithFields(map[string]interface{}{"relation": string(relation), "duplicates": dupes}).Warn("listing repeated some accounts")
	}

	log.InfoWithFields("fetched connections", map[string]interface{}{
		"relation": string(relation),
		"count":    list.Len(),
		"pages":    list.Pages,
	})
	return list.Accounts, nil
}
