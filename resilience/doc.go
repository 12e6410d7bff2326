// Package resilience provides the bounded polling loop used to wait on
// asynchronous remote tasks.
//
// Poll calls a check function at a fixed interval until it reports a
// terminal state, returns an error, or the attempt budget runs out:
//
//	status, err := resilience.Poll(ctx, resilience.PollConfig{
//	    Interval:    3 * time.Second,
//	    MaxAttempts: 120,
//	}, func(ctx context.Context, attempt int) (*Status, bool, error) {
//	    s, err := client.Status(ctx, id)
//	    return s, err == nil && s.Done(), err
//	})
//	if errors.Is(err, resilience.ErrPollExhausted) { ... }
//
// There is no backoff and no retry of failed checks: an error from the
// check function ends the loop.
package resilience
