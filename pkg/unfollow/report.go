package unfollow

import "errors"

var errNoResult = errors.New("mutation returned neither a result nor an error")

// Report is the tally of a finished loop
type Report struct {
	Planned        int
	Succeeded      int
	FailedResponse int
	FailedError    int
	NotAttempted   int
}

// Failed returns every attempt that did not succeed
func (r Report) Failed() int {
	return r.FailedResponse + r.FailedError
}

// Attempted returns how many mutations were sent
func (r Report) Attempted() int {
	return r.Succeeded + r.Failed()
}

// Summarize reduces outcomes to counts. planned is the number of accounts
// the loop was given, so accounts skipped by cancellation show up as
// NotAttempted.
func Summarize(outcomes []Outcome, planned int) Report {
	r := Report{Planned: planned}
	for _, o := range outcomes {
		switch o.Status {
		case StatusSucceeded:
			r.Succeeded++
		case StatusFailedResponse:
			r.FailedResponse++
		case StatusFailedError:
			r.FailedError++
		}
	}
	r.NotAttempted = max(planned-len(outcomes), 0)
	return r
}
