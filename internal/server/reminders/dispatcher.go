package reminders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/mail"
	"github.com/juju/clock"
	"golang.org/x/sync/errgroup"
)

// Options tune a Dispatcher.
type Options struct {
	Enabled     bool
	DueSoonDays int
	DedupWindow time.Duration
	SendTimeout time.Duration
	Concurrency int
}

// Result is the aggregate outcome of one cycle. Total counts the batches
// built before dedup, so Total == Sent + Skipped.
type Result struct {
	Sent     int  `json:"sent"`
	Skipped  int  `json:"skipped"`
	Total    int  `json:"total"`
	Disabled bool `json:"disabled"`
}

// Dispatcher runs reminder cycles: build, dedup, render, send, log.
// Cycles never overlap; a call made while one is running returns
// common.ErrCycleInProgress.
type Dispatcher struct {
	opts      Options
	builder   *BatchBuilder
	filter    *DedupFilter
	log       DeliveryLog
	transport mail.Transport
	clock     clock.Clock
	logger    logging.Logger
	recorder  Recorder

	running atomic.Bool
}

// NewDispatcher wires a Dispatcher. A nil recorder discards statistics.
func NewDispatcher(opts Options, store LoanStore, log DeliveryLog, transport mail.Transport, clk clock.Clock, l logging.Logger, r Recorder) *Dispatcher {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if r == nil {
		r = nopRecorder{}
	}
	return &Dispatcher{
		opts:      opts,
		builder:   NewBatchBuilder(store, opts.DueSoonDays),
		filter:    NewDedupFilter(log, opts.DedupWindow),
		log:       log,
		transport: transport,
		clock:     clk,
		logger:    l.With("module", "reminders"),
		recorder:  r,
	}
}

// Trigger runs a cycle as of the current time.
func (d *Dispatcher) Trigger(ctx context.Context) (Result, error) {
	return d.RunCycle(ctx, d.clock.Now())
}

// RunCycle runs one reminder cycle as of now. Only a failure to read the
// loan store or the delivery log aborts the cycle; per-borrower failures
// are logged and counted as skipped.
func (d *Dispatcher) RunCycle(ctx context.Context, now time.Time) (Result, error) {
	if !d.opts.Enabled {
		d.logger.Info(ctx, "reminders disabled, skipping cycle")
		d.recorder.ObserveCycle(CycleDisabled, 0)
		return Result{Disabled: true}, nil
	}

	if !d.running.CompareAndSwap(false, true) {
		d.logger.Warn(ctx, "reminder cycle already running")
		d.recorder.ObserveCycle(CycleBusy, 0)
		return Result{}, common.ErrCycleInProgress
	}
	defer d.running.Store(false)

	started := d.clock.Now()
	res, err := d.runCycle(ctx, now)
	took := d.clock.Now().Sub(started)
	if err != nil {
		d.logger.Error(ctx, "reminder cycle failed", "error", err)
		d.recorder.ObserveCycle(CycleFailed, took)
		return Result{}, err
	}

	d.logger.Info(ctx, "reminder cycle finished", "sent", res.Sent, "skipped", res.Skipped, "total", res.Total)
	d.recorder.ObserveCycle(CycleOK, took)
	return res, nil
}

func (d *Dispatcher) runCycle(ctx context.Context, now time.Time) (Result, error) {
	d.logger.Info(ctx, "running reminder cycle", "now", now)

	batches, err := d.builder.Build(ctx, now)
	if err != nil {
		return Result{}, err
	}
	filtered, dedupSkipped, err := d.filter.Filter(ctx, batches, now)
	if err != nil {
		return Result{}, err
	}
	d.recorder.AddBatches(BatchSkippedDedup, dedupSkipped)

	var (
		mu  sync.Mutex
		res = Result{Total: len(batches), Skipped: dedupSkipped}
	)

	g := new(errgroup.Group)
	g.SetLimit(d.opts.Concurrency)
	for _, b := range filtered {
		g.Go(func() error {
			outcome := d.dispatch(ctx, b)
			d.recorder.AddBatches(outcome, 1)

			mu.Lock()
			defer mu.Unlock()
			if outcome == BatchSent {
				res.Sent++
			} else {
				res.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	return res, nil
}

// dispatch renders, sends and logs one batch and returns its outcome.
func (d *Dispatcher) dispatch(ctx context.Context, b Batch) string {
	logger := d.logger.With("borrower_id", b.Borrower.ID)
	email := Render(b)

	sendCtx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	outcome, err := d.transport.Send(sendCtx, mail.Message{
		BorrowerID: b.Borrower.ID,
		To:         b.Borrower.Email,
		Subject:    email.Subject,
		Text:       email.Text,
		HTML:       email.HTML,
	})
	cancel()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn(ctx, "reminder send timed out", "timeout", d.opts.SendTimeout)
		} else {
			logger.Warn(ctx, "failed to send reminder", "error", err)
		}
		return BatchFailed
	}
	logger.Debug(ctx, "reminder handed to transport", "outcome", outcome.String())
	if outcome == mail.Skipped {
		return BatchSkippedTransport
	}

	// A delivered reminder is recorded even if the caller has gone away.
	records := b.Records(d.clock.Now())
	if wr := d.log.InsertMany(context.WithoutCancel(ctx), records); !wr.Complete() {
		failed := wr.Attempted - wr.Written
		logger.Warn(ctx, "failed to record sent reminders", "attempted", wr.Attempted, "written", wr.Written, "errors", errors.Join(wr.Errors...))
		d.recorder.AddLogWriteFailures(failed)
	}
	return BatchSent
}
