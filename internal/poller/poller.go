// Package poller runs the fetch, validate, compare, notify, sleep cycle.
package poller

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"hwbot/internal/homework"
	"hwbot/internal/notifier"
	"hwbot/internal/practicum"
	"hwbot/internal/schedule"
	logx "hwbot/pkg/logx"
)

// Fetcher returns the raw review API payload for statuses changed since fromDate.
type Fetcher interface {
	HomeworkStatuses(ctx context.Context, fromDate int64) (any, error)
}

// Notifier delivers a message to the chat.
type Notifier interface {
	Notify(ctx context.Context, kind notifier.Kind, text string) error
}

const failurePrefix = "Program failure: "

type Config struct {
	Schedule schedule.Schedule
	// AfterCycle runs after every cycle, successful or not (watchdog pings).
	AfterCycle func()
}

// Poller owns the poll state; it is not safe for concurrent Cycle calls.
type Poller struct {
	cfg   Config
	api   Fetcher
	notif Notifier
	log   logx.Logger

	state  homework.PollState
	cursor int64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, api Fetcher, notif Notifier, log logx.Logger) *Poller {
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Poller{
		cfg:   cfg,
		api:   api,
		notif: notif,
		log:   log,
		now:   time.Now,
		sleep: sleepCtx,
	}
	p.cursor = p.now().Unix()
	return p
}

// State returns a copy of the current poll state.
func (p *Poller) State() homework.PollState { return p.state }

// Cursor returns the from_date used by the next fetch.
func (p *Poller) Cursor() int64 { return p.cursor }

// Run repeats Cycle until ctx is cancelled. Cycle failures are reported to
// the chat once per distinct error text and never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poll loop started", logx.String("schedule", p.cfg.Schedule.String()), logx.Int64("from_date", p.cursor))
	for {
		cycleLog := p.log.With(logx.String("cycle", uuid.NewString()))
		if err := p.guardedCycle(ctx, cycleLog); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.reportFailure(ctx, cycleLog, err)
		}
		if p.cfg.AfterCycle != nil {
			p.cfg.AfterCycle()
		}

		wait := p.cfg.Schedule.Delay(p.now())
		cycleLog.Debug("sleeping", logx.Duration("wait", wait))
		if err := p.sleep(ctx, wait); err != nil {
			p.log.Info("poll loop stopped")
			return err
		}
	}
}

// Cycle performs one fetch, validate, compare and notify pass.
func (p *Poller) Cycle(ctx context.Context) error {
	return p.cycle(ctx, p.log)
}

func (p *Poller) guardedCycle(ctx context.Context, log logx.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("cycle panicked", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.cycle(ctx, log)
}

func (p *Poller) cycle(ctx context.Context, log logx.Logger) error {
	raw, err := p.api.HomeworkStatuses(ctx, p.cursor)
	if err != nil {
		return err
	}
	homeworks, err := homework.CheckResponse(raw)
	if err != nil {
		return err
	}

	hw := homework.Placeholder().Map()
	if len(homeworks) > 0 {
		hw = homeworks[0]
	}
	cur, ok := homework.SubmissionFrom(hw)
	if !ok {
		// an empty remembered pair must not hide a malformed entry
		if _, err := homework.ParseStatus(hw); err != nil {
			return err
		}
		return fmt.Errorf("%w: malformed homework entry", homework.ErrShape)
	}

	if p.state.Observe(cur) {
		msg, err := homework.ParseStatus(hw)
		if err != nil {
			return err
		}
		if err := p.notif.Notify(ctx, notifier.KindStatus, msg); err != nil {
			// Delivery failures are not cycle failures.
			log.Error("status notification lost", logx.String("homework", cur.Name), logx.Err(err))
		}
		p.state.Remember(cur)
	} else {
		log.Debug("no status change", logx.String("homework", cur.Name), logx.String("status", string(cur.Status)))
	}

	p.cursor = p.now().Unix()
	return nil
}

func (p *Poller) reportFailure(ctx context.Context, log logx.Logger, err error) {
	text := err.Error()
	if !p.state.ShouldReport(text) {
		// repeats stay below the ERROR threshold of the Telegram log sink
		log.Warn("cycle failed again, already reported", logx.String("class", classify(err)), logx.Err(err))
		return
	}
	log.Error("cycle failed", logx.String("class", classify(err)), logx.Err(err))
	if nerr := p.notif.Notify(ctx, notifier.KindFailure, failurePrefix+text); nerr != nil {
		log.Warn("failure notification lost", logx.Err(nerr))
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, homework.ErrUnknownStatus):
		return "unknown_status"
	case errors.Is(err, homework.ErrShape), errors.Is(err, homework.ErrMissingKey):
		return "shape"
	case errors.Is(err, practicum.ErrRequest), errors.Is(err, context.DeadlineExceeded):
		return "request"
	default:
		return "other"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
