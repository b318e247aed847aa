package theoddsapi

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
	"sync"
	"time"

	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com"
	apiVersion     = "v4"
	userAgent      = "Athena/1.0 (Fortuna Prop Analytics)"
	timeout        = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
)

// Client implements the VendorAdapter interface for The Odds API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retryDelay time.Duration
	log        *logrus.Entry

	rateLimits *models.RateLimits
	mu         sync.RWMutex
}

// Ensure Client implements VendorAdapter
var _ contracts.VendorAdapter = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithRequestsPerSecond paces outgoing requests. Zero or less disables pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryDelay sets the base delay for exponential backoff
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithLogger sets the client's log entry
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) { c.log = entry }
}

// NewClient creates a new The Odds API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		retryDelay: retryDelay,
		log:        logrus.NewEntry(logrus.StandardLogger()),
		rateLimits: &models.RateLimits{
			RequestsRemaining: 500, // Default quota
			RequestsUsed:      0,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "theoddsapi",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Our own bad requests say nothing about vendor health
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("odds vendor circuit breaker state changed")
		},
	})

	return c
}

// FetchEventOdds retrieves player prop odds for one event with book deep links
func (c *Client) FetchEventOdds(ctx context.Context, opts *models.FetchEventOddsOptions) (*models.FetchResult, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/%s/events/%s/odds", c.baseURL, apiVersion, opts.Sport, opts.EventID)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", strings.Join(opts.Regions, ","))
	params.Set("markets", strings.Join(opts.Markets, ","))
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")
	params.Set("includeLinks", "true")

	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.doRequestWithRetry(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch event odds failed: %w", err)
	}

	// Single event response
	var apiResp oddsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse event odds response: %w", err)
	}

	return parseOddsResponse(apiResp, time.Now()), nil
}

// FetchEvents retrieves upcoming events without odds (for discovery)
func (c *Client) FetchEvents(ctx context.Context, sport string) ([]models.Event, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/%s/events", c.baseURL, apiVersion, sport)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("dateFormat", "iso")

	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.doRequestWithRetry(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch events failed: %w", err)
	}

	var apiResp []eventResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse events response: %w", err)
	}

	return parseEventsResponse(apiResp, time.Now()), nil
}

// SupportsMarket checks if this adapter supports a given player prop market,
// including its alternate-line variant
func (c *Client) SupportsMarket(market string) bool {
	_, err := models.ParseMarket(strings.TrimSuffix(market, "_alternate"))
	return err == nil
}

// GetRateLimits returns a snapshot of the vendor quota
func (c *Client) GetRateLimits() *models.RateLimits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	limits := *c.rateLimits
	return &limits
}

// doRequestWithRetry performs HTTP request with retry logic
func (c *Client) doRequestWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return body, nil
		}

		lastErr = err

		// An open breaker or a client error will not improve by retrying
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || isClientError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single paced HTTP request through the circuit breaker
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		// Update rate limits from headers
		c.updateRateLimits(resp.Header)

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, &httpError{
				StatusCode: resp.StatusCode,
				Message:    string(body),
			}
		}

		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// updateRateLimits extracts rate limit info from response headers
func (c *Client) updateRateLimits(headers http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := headers.Get("x-requests-remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimits.RequestsRemaining = val
		}
	}

	if used := headers.Get("x-requests-used"); used != "" {
		if val, err := strconv.Atoi(used); err == nil {
			c.rateLimits.RequestsUsed = val
		}
	}

	if remaining := c.rateLimits.RequestsRemaining; remaining < 50 {
		c.log.WithField("requests_remaining", remaining).Warn("odds vendor quota running low")
	}
}

// parseOddsResponse flattens one event's bookmakers into prop outcomes.
// The most specific deep link wins: outcome, then market, then bookmaker.
func parseOddsResponse(event oddsResponse, receivedAt time.Time) *models.FetchResult {
	commenceTime, err := time.Parse(time.RFC3339, event.CommenceTime)
	if err != nil {
		commenceTime = receivedAt // Fallback
	}

	result := &models.FetchResult{
		Events: []models.Event{{
			EventID:      event.ID,
			SportKey:     event.SportKey,
			HomeTeam:     event.HomeTeam,
			AwayTeam:     event.AwayTeam,
			CommenceTime: commenceTime,
			EventStatus:  eventStatus(commenceTime, receivedAt),
		}},
	}

	for _, bookmaker := range event.Bookmakers {
		vendorUpdate, err := time.Parse(time.RFC3339, bookmaker.LastUpdate)
		if err != nil {
			vendorUpdate = receivedAt
		}

		for _, market := range bookmaker.Markets {
			for _, outcome := range market.Outcomes {
				odd := models.RawOdds{
					EventID:          event.ID,
					SportKey:         event.SportKey,
					MarketKey:        market.Key,
					BookKey:          bookmaker.Key,
					OutcomeName:      outcome.Name,
					PlayerName:       strings.TrimSpace(outcome.Description),
					Price:            outcome.Price,
					Link:             firstLink(outcome.Link, market.Link, bookmaker.Link),
					VendorLastUpdate: vendorUpdate,
					ReceivedAt:       receivedAt,
				}

				if outcome.Point != nil {
					point := *outcome.Point
					odd.Point = &point
				}

				result.Odds = append(result.Odds, odd)
			}
		}
	}

	return result
}

// parseEventsResponse converts API response to internal Event format
func parseEventsResponse(apiResp []eventResponse, now time.Time) []models.Event {
	events := make([]models.Event, 0, len(apiResp))

	for _, evt := range apiResp {
		commenceTime, err := time.Parse(time.RFC3339, evt.CommenceTime)
		if err != nil {
			continue // Skip invalid events
		}

		events = append(events, models.Event{
			EventID:      evt.ID,
			SportKey:     evt.SportKey,
			HomeTeam:     evt.HomeTeam,
			AwayTeam:     evt.AwayTeam,
			CommenceTime: commenceTime,
			EventStatus:  eventStatus(commenceTime, now),
		})
	}

	return events
}

func eventStatus(commenceTime, now time.Time) string {
	if now.After(commenceTime) {
		return "live"
	}
	return "upcoming"
}

func firstLink(links ...string) *string {
	for _, l := range links {
		if l != "" {
			link := l
			return &link
		}
	}
	return nil
}

// httpError represents an HTTP error with status code
type httpError struct {
	StatusCode int
	Message    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// isClientError reports a 4xx other than 429
func isClientError(err error) bool {
	var httpErr *httpError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests
}

// API response structures matching The Odds API JSON format

type oddsResponse struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Link       string   `json:"link"`
	Markets    []market `json:"markets"`
}

type market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update"`
	Link       string    `json:"link"`
	Outcomes   []outcome `json:"outcomes"`
}

type outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"` // player name for props
	Price       int      `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Link        string   `json:"link"`
}

type eventResponse struct {
	ID           string `json:"id"`
	SportKey     string `json:"sport_key"`
	SportTitle   string `json:"sport_title"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
}
