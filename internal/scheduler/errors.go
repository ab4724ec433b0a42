package scheduler

import "errors"

// ErrNoRequest is returned by Insert/Finish when the handle carries
// no scheduler metadata, matching spec.md §7's "private slot null" no-op
// rule: callers check this rather than panicking on a missing attach.
var ErrNoRequest = errors.New("scheduler: request has no attached metadata")

// ErrShuttingDown is returned by Insert once ExitSched has run.
var ErrShuttingDown = errors.New("scheduler: exit_sched has run")
