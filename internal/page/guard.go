package page

import (
	"context"
	"errors"
	"time"

	"github.com/IgorGrieder/linkhub/internal/apperr"
)

// ErrSlowResponse is wrapped in the TransportError returned when the soft
// deadline passes before the call finished.
var ErrSlowResponse = errors.New("response took too long")

type result[T any] struct {
	value T
	err   error
}

// race runs fn with a hard deadline and stops waiting for it at the soft
// one. After the soft deadline fn keeps running in the background until it
// returns or the hard deadline cancels it.
func race[T any](ctx context.Context, action string, soft, hard time.Duration, fn func(context.Context) (T, error)) (T, error) {
	hardCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hard)

	done := make(chan result[T], 1)
	go func() {
		defer cancel()
		v, err := fn(hardCtx)
		done <- result[T]{value: v, err: err}
	}()

	timer := time.NewTimer(soft)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.value, r.err
	case <-timer.C:
		return zero, &apperr.TransportError{Action: action, Kind: apperr.KindTimeout, Err: ErrSlowResponse}
	case <-ctx.Done():
		cancel()
		return zero, apperr.NewTransport(action, ctx.Err())
	}
}
