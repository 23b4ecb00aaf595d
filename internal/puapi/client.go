// Package puapi talks to the PocketUni-style activity API.
//
// Every call is a JSON POST behind a shared rate limiter and a small retry
// loop; credential failures short-circuit with ErrAuth because retrying an
// expired token cannot help.
package puapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pumon/internal/config"
	"pumon/pkg/logx"
)

// ErrAuth marks a 401/403 from the upstream API. Callers treat it like any
// other final failure (the call yielded nothing) but it is logged distinctly
// so an expired token is not mistaken for an outage.
var ErrAuth = errors.New("puapi: authentication rejected (token expired or invalid)")

type Client struct {
	base       string
	token      string
	userAgent  string
	retryMax   int
	allowYears []int64

	hc      *http.Client
	limiter *rate.Limiter
	log     logx.Logger

	sleep func(context.Context, time.Duration) error
}

func New(cfg *config.Config, log logx.Logger) *Client {
	rps := cfg.API.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		base:       strings.TrimRight(cfg.API.BaseURL, "/"),
		token:      cfg.Auth.Token,
		userAgent:  cfg.Auth.UserAgent,
		retryMax:   cfg.API.RetryMax,
		allowYears: cfg.Filters.AllowYears,
		hc:         &http.Client{Timeout: cfg.APITimeout()},
		limiter:    rate.NewLimiter(rate.Limit(rps), 2),
		log:        log.With(logx.String("component", "puapi")),
		sleep:      sleepCtx,
	}
}

// postJSON performs one logical call: rate-limit, POST, retry transient
// failures with jittered backoff, decode the body into out.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	url := c.base + path

	var lastErr error
	attempts := c.retryMax
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", c.token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			c.log.Warn("request failed",
				logx.String("url", url), logx.Int("attempt", attempt), logx.Err(err))
		} else {
			switch {
			case resp.StatusCode == http.StatusOK:
				b, rerr := io.ReadAll(resp.Body)
				resp.Body.Close()
				if rerr != nil {
					lastErr = rerr
					break
				}
				if err := json.Unmarshal(b, out); err != nil {
					return fmt.Errorf("decode response from %s: %w", url, err)
				}
				return nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				resp.Body.Close()
				c.log.Error("authentication rejected",
					logx.String("url", url), logx.Int("status", resp.StatusCode))
				return ErrAuth
			default:
				resp.Body.Close()
				lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
				c.log.Warn("request returned error status",
					logx.String("url", url), logx.Int("status", resp.StatusCode), logx.Int("attempt", attempt))
			}
		}

		if attempt < attempts {
			// Randomized 1-2s pause keeps retry bursts off the upstream.
			d := time.Second + time.Duration(rand.Int63n(int64(time.Second)))
			if err := c.sleep(ctx, d); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("request to %s failed after %d attempts: %w", url, attempts, lastErr)
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
