package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNetworkFailure    = errors.New("rates request failed")
	ErrMalformedResponse = errors.New("malformed rates response")
)

// RateFetcher returns the number of units of code per 1 USD.
type RateFetcher interface {
	FetchRate(ctx context.Context, code string) (float64, error)
}

// RatesClient reads exchange rates from an HTTP endpoint that answers
// GET <baseURL>/<code> with {"rates": {"<code>": <number>, ...}}.
type RatesClient struct {
	httpClient *http.Client
	baseURL    string
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// NewRatesClient creates a client. A non-positive timeout defaults to 10s.
func NewRatesClient(baseURL string, timeout time.Duration) *RatesClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RatesClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

var _ RateFetcher = (*RatesClient)(nil)

// FetchRate requests the rate of code against USD.
func (c *RatesClient) FetchRate(ctx context.Context, code string) (float64, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: unexpected status: %d", ErrNetworkFailure, resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrMalformedResponse, err)
	}
	if body.Rates == nil {
		return 0, fmt.Errorf("%w: missing rates", ErrMalformedResponse)
	}
	rate, ok := body.Rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: no rate for %s", ErrMalformedResponse, code)
	}
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0, fmt.Errorf("%w: invalid rate %v for %s", ErrMalformedResponse, rate, code)
	}
	return rate, nil
}
