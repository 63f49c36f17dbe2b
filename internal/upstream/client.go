package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pawmart/storefront-backend/pkg/config"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"github.com/pawmart/storefront-backend/pkg/logger"
	"github.com/pawmart/storefront-backend/pkg/metrics"
)

var (
	errBaseURLRequired = errors.New("upstream base url is required")
	errLoggerRequired  = errors.New("upstream logger is required")
)

// Client wraps the commerce backend REST API with centralized auth cookie
// handling, logging, timing, and error mapping.
type Client struct {
	baseURL    string
	cookieName string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *metrics.StorefrontMetrics
}

// NewClient initializes the upstream wrapper and validates the configuration.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing upstream base url: %w", err)
	}

	return &Client{
		baseURL:    base,
		cookieName: cfg.SessionCookie,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logg,
		metrics:    m,
	}, nil
}

// Ping verifies the backend is reachable; any HTTP answer counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}
	return req, nil
}

func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveUpstream(endpoint, time.Since(start))
	return resp, err
}

// readJSONBody enforces the content-type sniffing the storefront relies on:
// a non-JSON body from the backend is reported as malformed, never decoded.
func readJSONBody(resp *http.Response, dest any) error {
	defer drain(resp)

	contentType := resp.Header.Get("Content-Type")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "reading response body")
	}
	if !strings.Contains(contentType, "application/json") {
		return pkgerrors.New(pkgerrors.CodeMalformed, fmt.Sprintf("unexpected content type %q", contentType))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "decoding response body")
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func statusError(resp *http.Response, action string) *pkgerrors.Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return pkgerrors.New(
		pkgerrors.CodeDependency,
		fmt.Sprintf("%s: status %d: %s", action, resp.StatusCode, strings.TrimSpace(string(body))),
	)
}
