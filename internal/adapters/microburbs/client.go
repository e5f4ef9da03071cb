// internal/adapters/microburbs/client.go
package microburbs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"cma_viewer/internal/adapters/observability"
	"cma_viewer/internal/domain"
)

const (
	defaultRetries = 3
	defaultBackoff = time.Second
	userAgent      = "cma-viewer/1.0"
)

type Client struct {
	base    string
	token   string
	hc      *http.Client
	rl      *rate.Limiter
	retries uint
	backoff time.Duration
}

type Option func(*Client)

// WithRetry sets how many times a transient failure is retried and the first
// backoff delay; each further delay doubles.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = uint(retries)
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// New builds a client for apiBase (e.g. http://localhost:3000/api).
func New(apiBase, token string, rps int, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(apiBase); err != nil {
		return nil, fmt.Errorf("invalid api base %q: %w", apiBase, err)
	}
	if rps <= 0 {
		rps = 5
	}
	c := &Client{
		base:    strings.TrimRight(apiBase, "/"),
		token:   token,
		hc:      &http.Client{Timeout: 20 * time.Second},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GetCMA fetches the raw CMA payload for id.
func (c *Client) GetCMA(ctx context.Context, id string) (domain.RawResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrEmptyID
	}
	u := c.base + "/cma?id=" + url.QueryEscape(id)

	var out domain.RawResponse
	err := retry.Do(
		func() error {
			raw, err := c.get(ctx, u)
			if err != nil {
				if !transient(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			out = raw
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retries+1),
		retry.Delay(c.backoff),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			var se *domain.StatusError
			if errors.As(err, &se) {
				if se.RetryAfter > 0 {
					return se.RetryAfter
				}
			}
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Uint("attempt", n+1).Str("id", id).Err(err).Msg("retrying cma fetch")
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Internals ----

func transient(err error) bool {
	var se *domain.StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var ne *domain.NetworkError
	return errors.As(err, &ne)
}

// get performs one rate-limited GET and decodes a JSON object body.
func (c *Client) get(ctx context.Context, u string) (domain.RawResponse, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, &domain.NetworkError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("microburbs", "cma", 0, time.Since(start))
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("microburbs", "cma", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.StatusError{
			Code:       resp.StatusCode,
			Status:     statusText(resp),
			Body:       strings.TrimSpace(string(b)),
			RetryAfter: retryAfter(resp),
		}
	}

	var out domain.RawResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out == nil {
		msg := "invalid JSON body"
		if err != nil {
			msg = err.Error()
		}
		return nil, &domain.StatusError{Code: resp.StatusCode, Status: "Invalid response body", Body: msg}
	}
	return out, nil
}

// statusText strips the numeric prefix from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	s := strings.TrimSpace(resp.Status)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return http.StatusText(resp.StatusCode)
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
