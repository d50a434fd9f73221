package services

import "time"

// DefaultMaxAttempts is the delivery attempt budget per entry.
const DefaultMaxAttempts = 3

// Decision is the outcome of the retry policy for one failed delivery
// attempt. NextRetryCount is always current+1; when Terminal is set the
// entry's budget is exhausted and no further attempt may be made. Backoff
// is advisory: the dispatch loop is connectivity-gated, not timer-gated.
type Decision struct {
	Terminal       bool
	NextRetryCount int
	Backoff        time.Duration
}

// Decide computes the retry decision for an entry that just failed a
// delivery attempt with the given persisted retry count. The backoff grows
// exponentially: 2^n minutes for the n-th retry.
func Decide(currentRetryCount, maxAttempts int) Decision {
	next := currentRetryCount + 1
	if next >= maxAttempts {
		return Decision{Terminal: true, NextRetryCount: next}
	}
	return Decision{
		NextRetryCount: next,
		Backoff:        time.Duration(1<<next) * time.Minute,
	}
}
