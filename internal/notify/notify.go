// Package notify delivers the run's generated messages. Delivery is
// best-effort and at-most-once: failures are logged, never retried, and the
// snapshot has already been persisted by the time any sink runs.
package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pumon/internal/config"
	"pumon/pkg/logx"
)

// Messages are joined with this separator before encoding, so a single push
// stays readable on the receiving side.
var separator = "\n\n" + strings.Repeat("-", 30) + "\n\n"

// Sink accepts one run's worth of messages.
type Sink interface {
	Send(ctx context.Context, messages []string) error
}

// Dispatcher fans a run's messages out to every configured sink. Per-sink
// failures are logged and do not affect the others.
type Dispatcher struct {
	sinks []Sink
	log   logx.Logger
}

// New builds the dispatcher from config: HTTP push and/or Telegram when
// configured, stdout when neither is.
func New(cfg *config.Config, log logx.Logger) (*Dispatcher, error) {
	d := &Dispatcher{log: log.With(logx.String("component", "notify"))}

	if strings.TrimSpace(cfg.Notify.PushURL) != "" {
		d.sinks = append(d.sinks, NewPushSink(cfg.Notify.PushURL))
	}
	if tg := cfg.Notify.Telegram; tg != nil {
		s, err := NewTelegramSink(tg.Token, tg.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram sink: %w", err)
		}
		d.sinks = append(d.sinks, s)
	}
	if len(d.sinks) == 0 {
		d.sinks = append(d.sinks, StdoutSink{})
	}
	return d, nil
}

// Dispatch sends to all sinks. It returns the number of sinks that failed;
// delivery failure is never fatal to the run.
func (d *Dispatcher) Dispatch(ctx context.Context, messages []string) int {
	if len(messages) == 0 {
		return 0
	}
	failed := 0
	for _, s := range d.sinks {
		if err := s.Send(ctx, messages); err != nil {
			failed++
			d.log.Error("delivery failed", logx.String("sink", fmt.Sprintf("%T", s)), logx.Err(err))
		}
	}
	return failed
}

// ---- HTTP push sink ----

// PushSink POSTs a single form field carrying the base64-encoded
// concatenation of all messages.
type PushSink struct {
	url string
	hc  *http.Client
}

func NewPushSink(rawURL string) *PushSink {
	// Drop any query string; only the script path is the endpoint.
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return &PushSink{url: rawURL, hc: &http.Client{Timeout: 5 * time.Second}}
}

func (p *PushSink) Send(ctx context.Context, messages []string) error {
	full := strings.Join(messages, separator)
	b64 := base64.StdEncoding.EncodeToString([]byte(full))

	form := url.Values{"msg": {b64}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// ---- stdout sink ----

// StdoutSink writes messages to standard output, the fallback when no remote
// sink is configured.
type StdoutSink struct{}

func (StdoutSink) Send(_ context.Context, messages []string) error {
	for _, m := range messages {
		fmt.Println(m)
		fmt.Println(strings.Repeat("-", 30))
	}
	return nil
}
