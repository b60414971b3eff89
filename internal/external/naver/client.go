package naver

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/alphalens/pkg/httputil"
	"github.com/wonny/alphalens/pkg/logger"
)

const (
	// DefaultChartURL serves the siseJson daily chart endpoint
	DefaultChartURL = "https://fchart.stock.naver.com"
	// DefaultFinanceURL serves the stock news listing pages
	DefaultFinanceURL = "https://finance.naver.com"

	defaultMaxNewsPages = 20
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	chartURL     string
	financeURL   string
	maxNewsPages int
}

// NewClient creates a new Naver Finance client. Empty URLs fall back to the
// public endpoints.
func NewClient(httpClient *httputil.Client, log *logger.Logger, chartURL, financeURL string) *Client {
	if chartURL == "" {
		chartURL = DefaultChartURL
	}
	if financeURL == "" {
		financeURL = DefaultFinanceURL
	}

	return &Client{
		httpClient:   httpClient.WithHeader("Referer", DefaultFinanceURL+"/"),
		logger:       log,
		chartURL:     chartURL,
		financeURL:   financeURL,
		maxNewsPages: defaultMaxNewsPages,
	}
}

// WithMaxNewsPages caps how many news listing pages are walked per request
func (c *Client) WithMaxNewsPages(n int) *Client {
	if n > 0 {
		c.maxNewsPages = n
	}
	return c
}

// fetch performs a GET against base+path and returns the body
func (c *Client) fetch(ctx context.Context, base, path string, params url.Values) ([]byte, error) {
	fullURL := base + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	return body, nil
}
