package unfollow

import (
	"context"
	"time"

	"igunfollow/pkg/graph"
	"igunfollow/pkg/instagram"
	"igunfollow/pkg/logger"
	"igunfollow/pkg/ratelimit"
)

// Status is the state of one unfollow attempt
type Status string

const (
	StatusPending        Status = "pending"
	StatusSucceeded      Status = "succeeded"
	StatusFailedResponse Status = "failed-response"
	StatusFailedError    Status = "failed-error"
)

// Terminal reports whether s is a final state
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailedResponse || s == StatusFailedError
}

// Outcome records what happened to one account
type Outcome struct {
	Account    graph.Account
	Status     Status
	StatusCode int
	Err        error
	Attempt    time.Time
	Duration   time.Duration
}

// Mutator sends the unfollow mutation for one account
type Mutator interface {
	Unfollow(ctx context.Context, userID string) (*instagram.FriendshipResult, error)
}

// Loop unfollows accounts one at a time with a pause between requests
type Loop struct {
	Mutator Mutator

	// Delay is waited on between two mutations, never after the last one
	Delay ratelimit.Limiter

	// StartDelay is slept once before the first mutation
	StartDelay time.Duration

	// ErrorCooldown is slept after a mutation that got no response
	ErrorCooldown time.Duration

	Logger logger.Logger
}

// Run processes accounts in order and returns one outcome per attempted
// account. Failures are recorded and never stop the loop, and nothing is
// retried. When ctx is cancelled the loop stops and the remaining accounts
// get no outcome.
func (l *Loop) Run(ctx context.Context, accounts []graph.Account, obs Observer) []Outcome {
	log := l.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	delay := l.Delay
	if delay == nil {
		delay = ratelimit.None()
	}
	if obs == nil {
		obs = NopObserver{}
	}

	outcomes := make([]Outcome, 0, len(accounts))
	if len(accounts) == 0 {
		return outcomes
	}

	if err := ratelimit.Sleep(ctx, l.StartDelay); err != nil {
		log.WithError(err).Warn("unfollow loop cancelled before start")
		return outcomes
	}

	for i, account := range accounts {
		if i > 0 {
			if err := delay.Wait(ctx); err != nil {
				log.WithError(err).WithField("remaining", len(accounts)-i).Warn("unfollow loop cancelled")
				break
			}
		}

		outcome := l.attempt(ctx, account, log)
		outcomes = append(outcomes, outcome)
		obs.Outcome(i+1, len(accounts), outcome)

		if outcome.Status == StatusFailedError && l.ErrorCooldown > 0 && i < len(accounts)-1 {
			if err := ratelimit.Sleep(ctx, l.ErrorCooldown); err != nil {
				log.WithError(err).WithField("remaining", len(accounts)-i-1).Warn("unfollow loop cancelled")
				break
			}
		}
	}

	return outcomes
}

func (l *Loop) attempt(ctx context.Context, account graph.Account, log logger.Logger) Outcome {
	outcome := Outcome{Account: account, Status: StatusPending, Attempt: time.Now()}
	fields := map[string]interface{}{
		"user_id":  account.ID,
		"username": account.Handle,
	}

	result, err := l.Mutator.Unfollow(ctx, account.ID)
	outcome.Duration = time.Since(outcome.Attempt)

	switch {
	case err != nil:
		outcome.Status = StatusFailedError
		outcome.Err = err
		log.WithError(err).ErrorWithFields("unfollow failed", fields)
	case result == nil:
		outcome.Status = StatusFailedError
		outcome.Err = errNoResult
		log.ErrorWithFields("unfollow returned no result", fields)
	case result.OK():
		outcome.Status = StatusSucceeded
		outcome.StatusCode = result.StatusCode
		log.InfoWithFields("unfollowed", fields)
	default:
		outcome.Status = StatusFailedResponse
		outcome.StatusCode = result.StatusCode
		fields["status"] = result.StatusCode
		log.WarnWithFields("unfollow rejected", fields)
	}

	return outcome
}
