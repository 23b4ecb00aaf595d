package schedule

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"pumon/pkg/logx"
)

// Trigger fires the monitor pass on a cron spec in daemon mode.
//
// Supported specs are whatever robfig/cron's standard parser accepts:
// "*/5 * * * *", "@hourly", "@every 5m", ...
//
// Firings never overlap: cron runs each firing in its own goroutine, so a
// pass slower than the spec interval would otherwise race the next one on the
// snapshot file and double-notify the same deltas. A firing that arrives
// while the previous pass is still running is skipped, not queued.
type Trigger struct {
	c *cron.Cron
}

func NewTrigger(spec string, job func(), log logx.Logger) (*Trigger, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("invalid daemon spec %q: %w", spec, err)
	}
	return &Trigger{c: c}, nil
}

func (t *Trigger) Start() { t.c.Start() }

// Stop halts scheduling and waits for a running job to finish.
func (t *Trigger) Stop() {
	<-t.c.Stop().Done()
}

// cronLogger adapts logx to cron's logging interface; cron only speaks
// through it when a firing is skipped or a job panics.
type cronLogger struct {
	l logx.Logger
}

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Warn(msg, logx.Any("detail", kv))
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, logx.Err(err), logx.Any("detail", kv))
}
