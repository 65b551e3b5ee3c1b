// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/logging"
	"github.com/decidio/duel/internal/metrics"
	"github.com/decidio/duel/internal/models/tmdb"
)

const (
	// breakerName labels the TMDB circuit breaker in logs and metrics.
	breakerName = "tmdb-api"

	// requestTimeout bounds a single HTTP exchange, not the whole call
	// including retries.
	requestTimeout = 30 * time.Second

	// maxAttempts is the total number of tries per call, the first
	// attempt included.
	maxAttempts = 4

	// maxErrorBodySize caps how much of an error response is read for
	// diagnostics.
	maxErrorBodySize = 64 * 1024

	// defaultLanguage is requested for every title; TMDB falls back to
	// the original language when no translation exists.
	defaultLanguage = "en-US"
)

// transientStatus reports whether an HTTP status is worth retrying.
func transientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// readBodyForError reads at most maxErrorBodySize bytes of a response body
// for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}

// breakerStateValue maps a gobreaker state onto the metric encoding
// 0=closed, 1=half-open, 2=open.
func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Client talks to the TMDB v3 API with a client-side rate limiter, retries
// with exponential backoff and a circuit breaker.
//
// Thread safety: safe for concurrent use; every call creates its own request
// and the limiter and breaker are both concurrency-safe.
type Client struct {
	baseURL        string
	apiKey         string
	minVoteCount   int
	minVoteAverage float64
	client         *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[[]byte]
	retryBaseDelay time.Duration
}

// NewClient creates a TMDB client from the ingest configuration.
//
// The circuit breaker opens when at least 60% of a minimum of 10 calls fail
// within a one minute window, and stays open for two minutes before letting
// probe requests through.
func NewClient(cfg *config.TMDBConfig) *Client {
	metrics.UpdateCircuitBreakerState(breakerName, 0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("TMDB circuit breaker state change")
			metrics.UpdateCircuitBreakerState(name, breakerStateValue(to))
		},
	})

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 4
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		minVoteCount:   cfg.MinVoteCount,
		minVoteAverage: cfg.MinVoteAverage,
		client:         &http.Client{Timeout: requestTimeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		breaker:        breaker,
		retryBaseDelay: time.Second,
	}
}

// DiscoverMoviesByYear fetches one page of /discover/movie for a primary
// release year, sorted by descending popularity. The configured vote floors
// are pushed down into the query so obviously unusable titles never cost a
// detail call.
func (c *Client) DiscoverMoviesByYear(ctx context.Context, year, page int) (*tmdb.DiscoverResponse, error) {
	params := url.Values{}
	params.Set("language", defaultLanguage)
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("sort_by", "popularity.desc")
	params.Set("primary_release_year", strconv.Itoa(year))
	params.Set("page", strconv.Itoa(page))
	if c.minVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(c.minVoteCount))
	}
	if c.minVoteAverage > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(c.minVoteAverage, 'f', -1, 64))
	}

	var resp tmdb.DiscoverResponse
	if err := c.get(ctx, "discover", "/discover/movie", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MovieDetail fetches a movie with keywords, credits and release dates
// appended in a single call.
func (c *Client) MovieDetail(ctx context.Context, movieID int64) (*tmdb.MovieDetail, error) {
	params := url.Values{}
	params.Set("language", defaultLanguage)
	params.Set("append_to_response", "keywords,credits,release_dates")

	var detail tmdb.MovieDetail
	if err := c.get(ctx, "movie_detail", fmt.Sprintf("/movie/%d", movieID), params, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// get runs one logical API call: wait for the rate limiter, execute the
// request through the circuit breaker with retries, decode the JSON body.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint, path, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordCircuitBreakerRequest(breakerName, "rejected")
			return core.TransientExternalf("tmdb circuit breaker rejected %s: %v", endpoint, err)
		}
		metrics.RecordCircuitBreakerRequest(breakerName, "failure")
		return err
	}
	metrics.RecordCircuitBreakerRequest(breakerName, "success")

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode tmdb %s response: %w", endpoint, err)
	}
	return nil
}

// fetch performs the HTTP exchange with retries. Transient statuses and
// network errors back off 1s, 2s, 4s between attempts; anything else fails
// immediately. The returned error wraps core.ErrTransientExternal when every
// attempt failed transiently, so callers can decide to skip and move on.
func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.TMDBRetries.Inc()
			delay := c.retryBaseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create tmdb request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.RecordTMDBCall(endpoint, 0, time.Since(start), err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = core.TransientExternalf("tmdb %s request failed: %v", endpoint, err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			metrics.RecordTMDBCall(endpoint, resp.StatusCode, time.Since(start), readErr)
			if readErr != nil {
				lastErr = core.TransientExternalf("tmdb %s body read failed: %v", endpoint, readErr)
				continue
			}
			return body, nil
		}

		errBody := readBodyForError(resp.Body)
		_ = resp.Body.Close()
		metrics.RecordTMDBCall(endpoint, resp.StatusCode, time.Since(start), nil)

		if !transientStatus(resp.StatusCode) {
			return nil, fmt.Errorf("tmdb %s returned HTTP %d: %s", endpoint, resp.StatusCode, errBody)
		}
		lastErr = core.TransientExternalf("tmdb %s returned HTTP %d", endpoint, resp.StatusCode)

		logging.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Int("max_attempts", maxAttempts).
			Msg("Transient TMDB failure")
	}

	return nil, fmt.Errorf("tmdb %s failed after %d attempts: %w", endpoint, maxAttempts, lastErr)
}
