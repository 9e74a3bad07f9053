package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/parser"
)

const (
	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// newRetryPolicy retries transient failures (unreachable network, 5xx, 429) with
// exponential backoff. Once retries are exhausted the last error is returned as-is
// so callers can still match it with errors.As.
func newRetryPolicy(maxRetries int) retrypolicy.RetryPolicy[[]byte] {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return isTransient(err)
		}).
		WithBackoff(retryBaseDelay, retryMaxDelay).
		WithMaxRetries(maxRetries).
		ReturnLastFailure().
		Build()
}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var upstream *apperrors.ErrUpstream
	if errors.As(err, &upstream) {
		return upstream.Transient()
	}
	return errors.Is(err, &apperrors.ErrNetworkUnavailable{})
}

// getJSON resolves requestURL through the response cache, falling back to TVMaze,
// and projects the body with p. Only bodies that parse successfully are cached.
func getJSON[T any](ctx context.Context, c *client, endpoint, requestURL string, p parser.Parser[T]) ([]T, error) {
	logger := config.GetLogger()

	if body, ok := c.responses.Get(requestURL); ok {
		records, err := p.Parse(bytes.NewReader(body))
		if err == nil {
			logger.Debug().Str("url", requestURL).Msg("Serving TVMaze response from cache")
			return records, nil
		}
		logger.Warn().Err(err).Str("url", requestURL).Msg("Discarding unreadable cached response")
	}

	start := time.Now()
	body, err := failsafe.With[[]byte](c.retryPolicy).WithContext(ctx).Get(func() ([]byte, error) {
		return c.fetchOnce(ctx, endpoint, requestURL)
	})
	metrics.TVMazeRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	records, err := p.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &apperrors.ErrMalformedResponse{URL: requestURL, Err: err}
	}

	c.responses.Set(requestURL, body)
	return records, nil
}

// fetchOnce performs a single GET and returns the body converted to UTF-8.
func (c *client) fetchOnce(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TVMazeRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &apperrors.ErrNetworkUnavailable{URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	metrics.TVMazeRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger := config.GetLogger()
		logger.Warn().Str("url", requestURL).Int("status", resp.StatusCode).Msg("TVMaze returned non-success status")
		return nil, &apperrors.ErrUpstream{URL: requestURL, Status: resp.StatusCode}
	}

	reader, err := parser.NewUTF8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &apperrors.ErrMalformedResponse{URL: requestURL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &apperrors.ErrNetworkUnavailable{URL: requestURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
