package worldfootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/platform/logging"
	"github.com/openfooty/schedsync/internal/usecase"
)

const defaultBaseURL = "https://www.worldfootball.net"

var errTransient = crerr.New("worldfootball transient failure")

// pathTemplates are the URL strategies for one competition season, tried in
// order. Older seasons live under the _2 suffix on some mirrors.
var pathTemplates = []string{
	"/api/v1/all_matches/%s-%s",
	"/api/v1/all_matches/%s-%s_2",
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURLs   []string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

// Client fetches raw schedule tables. Every configured base URL is tried with
// every path strategy; transient failures retry with a linear backoff before
// moving on to the next candidate.
type Client struct {
	httpClient *http.Client
	baseURLs   []string
	maxRetries int
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURLs := make([]string, 0, len(cfg.BaseURLs))
	for _, raw := range cfg.BaseURLs {
		base := strings.TrimRight(strings.TrimSpace(raw), "/")
		if base != "" {
			baseURLs = append(baseURLs, base)
		}
	}
	if len(baseURLs) == 0 {
		baseURLs = []string{defaultBaseURL}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: httpClient,
		baseURLs:   baseURLs,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

type scheduleEnvelope struct {
	Rows []match.RawRow `json:"rows"`
}

// FetchSchedule tries every (base URL, path strategy) candidate in order and
// returns the first non-empty table. A candidate that answers with an empty
// table is not an error by itself; only when every candidate comes back empty
// does the whole fetch fail with ErrNoDataTable.
func (c *Client) FetchSchedule(ctx context.Context, family schedule.Family, competition, season string) ([]match.RawRow, error) {
	if strings.TrimSpace(competition) == "" || strings.TrimSpace(season) == "" {
		return nil, fmt.Errorf("%w: competition and season are required", usecase.ErrInvalidInput)
	}

	sawEmpty := false
	var lastErr error
	for _, base := range c.baseURLs {
		for _, template := range pathTemplates {
			fullURL := base + fmt.Sprintf(template, competition, season) + "?family=" + string(family)

			raw, err := c.executeRequest(ctx, fullURL)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				lastErr = err
				continue
			}

			var envelope scheduleEnvelope
			if err := sonic.Unmarshal(raw, &envelope); err != nil {
				lastErr = fmt.Errorf("decode schedule payload: %w", err)
				continue
			}
			if len(envelope.Rows) == 0 {
				sawEmpty = true
				continue
			}

			rows := envelope.Rows
			for i := range rows {
				if rows[i].Season == "" {
					rows[i].Season = season
				}
				if rows[i].Competition == "" {
					rows[i].Competition = competition
				}
			}
			return rows, nil
		}
	}

	if sawEmpty {
		return nil, fmt.Errorf("%w: %s %s", usecase.ErrNoDataTable, competition, season)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("schedule request failed")
	}
	return nil, fmt.Errorf("%w: schedule source is unavailable: %v", usecase.ErrDependencyUnavailable, lastErr)
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: source status=%d", errTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("source status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("schedule request failed")
	}
	c.logger.Warn("worldfootball request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
