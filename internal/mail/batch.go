package mail

import (
	"context"
	"fmt"
	"sync"

	"github.com/imgajeed76/pinvite/internal/logutil"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result reports the outcome of one message in a batch.
type Result struct {
	Message Message
	Err     error
}

// Deliver sends every message using at most workers goroutines. onDone, if
// set, is called once per message from the worker that sent it. The
// returned error combines every failure.
func Deliver(ctx context.Context, s Sender, msgs []Message, workers int, onDone func(Result)) error {
	if len(msgs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(msgs) {
		workers = len(msgs)
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v interface{}) {
		logutil.L().Error("mail worker panicked", zap.Any("panic", v))
	}))
	if err != nil {
		return fmt.Errorf("create mail pool: %w", err)
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	record := func(r Result) {
		if r.Err != nil {
			mu.Lock()
			errs = multierr.Append(errs, r.Err)
			mu.Unlock()
		}
		if onDone != nil {
			onDone(r)
		}
	}

	for _, m := range msgs {
		m := m
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				record(Result{Message: m, Err: err})
				return
			}
			record(Result{Message: m, Err: s.SendInvite(ctx, m)})
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			record(Result{Message: m, Err: fmt.Errorf("submit %s: %w", m.To, err)})
		}
	}
	wg.Wait()

	if errs != nil {
		logutil.L().Warn("mail batch finished with failures",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Int("total", len(msgs)))
	}
	return errs
}
