package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"
)

const (
	searchPath   = "/api/v1/logs/search"
	featuresPath = "/api/v1/session/features"

	// FeatureLogSearch is reported by servers with a search backend.
	FeatureLogSearch = "log-search"
)

var ErrNoBaseURL = errors.New("log search base URL is not configured")

// APIError is a non-2xx reply from the log search service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("log search returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("log search returned status %d: %s", e.StatusCode, e.Message)
}

// LogSearchClient talks to a remote audit log search service.
type LogSearchClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*LogSearchClient)

// WithToken sends token as the Authorization header.
func WithToken(token string) Option {
	return func(c *LogSearchClient) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *LogSearchClient) { c.httpClient = hc }
}

func NewLogSearchClient(baseURL string, opts ...Option) (*LogSearchClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: time.Second * 10,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	c := &LogSearchClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: transport},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search fetches one page. It never retries.
func (c *LogSearchClient) Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	endpoint := c.baseURL + searchPath + "?" + logquery.Encode(req).Encode()

	var resp dto.LogSearchResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []model.AuditRecord{}
	}
	log.Debug().Int("page", req.PageNo).Int("returned", len(resp.Results)).Msg("Fetched audit log page")
	return &resp, nil
}

// Features returns the feature list the server reports.
func (c *LogSearchClient) Features(ctx context.Context) ([]string, error) {
	var resp dto.FeaturesResponse
	if err := c.getJSON(ctx, c.baseURL+featuresPath, &resp); err != nil {
		return nil, err
	}
	return resp.Features, nil
}

// SearchEnabled reports whether the server has log search turned on.
func (c *LogSearchClient) SearchEnabled(ctx context.Context) (bool, error) {
	features, err := c.Features(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range features {
		if f == FeatureLogSearch {
			return true, nil
		}
	}
	return false, nil
}

// WaitReady polls the features endpoint with exponential backoff until the
// server answers or maxWait elapses.
func (c *LogSearchClient) WaitReady(ctx context.Context, maxWait time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = maxWait

	operation := func() error {
		_, err := c.Features(ctx)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				// the server is up, it just said no
				return backoff.Permanent(err)
			}
			log.Debug().Err(err).Str("url", c.baseURL).Msg("Log search service not ready yet")
		}
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (c *LogSearchClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("log search request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return fmt.Errorf("read log search response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode log search response: %w", err)
	}
	return nil
}
