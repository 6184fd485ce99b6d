package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/plantaest/citronspam/internal/log"
	"golang.org/x/net/proxy"
)

const (
	// defaultTimeout bounds a single API request.
	defaultTimeout = 30 * time.Second

	// defaultUserAgent is used when WithUserAgent is not given.
	defaultUserAgent = "citronspam (https://github.com/plantaest/citronspam)"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 16 << 20

	// maxErrorBody caps the body excerpt kept in an HTTPError.
	maxErrorBody = 512
)

// EndpointFor returns the Action API endpoint of a wiki server name.
func EndpointFor(serverName string) string {
	return "https://" + serverName + "/w/api.php"
}

// Client talks to one wiki's Action API. It is safe for concurrent use.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	proxyAddr  string
	logger     *slog.Logger

	mu       sync.Mutex
	tokens   map[string]string
	messages map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A cookie jar is added when the
// given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each request of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProxy routes requests of the default HTTP client through a SOCKS5
// proxy given as host:port.
func WithProxy(addr string) Option {
	return func(c *Client) { c.proxyAddr = addr }
}

// WithLogger sets the logger. Request parameters are masked before logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a client for the API at endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		endpoint:  u,
		userAgent: defaultUserAgent,
		timeout:   defaultTimeout,
		logger:    log.Discard(),
		tokens:    make(map[string]string),
		messages:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := newHTTPClient(c.timeout, c.proxyAddr)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	} else if c.httpClient.Jar == nil {
		hc := *c.httpClient
		hc.Jar = newCookieJar()
		c.httpClient = &hc
	}
	return c, nil
}

func newCookieJar() http.CookieJar {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options
	return jar
}

func newHTTPClient(timeout time.Duration, proxyAddr string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyAddr != "" {
		if host, port, err := net.SplitHostPort(proxyAddr); err != nil || host == "" || port == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, proxyAddr)
		}
		dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("%w: dialer has no context support", ErrInvalidProxyAddress)
		}
		transport.Proxy = nil
		transport.DialContext = cd.DialContext
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       newCookieJar(),
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// Get sends a GET request with params and decodes the response into out.
// out may be nil.
func (c *Client) Get(ctx context.Context, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, params, out)
}

// Post sends a form-encoded POST request and decodes the response into out.
// out may be nil.
func (c *Client) Post(ctx context.Context, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, params, out)
}

func withFormat(params url.Values) url.Values {
	p := make(url.Values, len(params)+2)
	maps.Copy(p, params)
	p.Set("format", "json")
	p.Set("formatversion", "2")
	return p
}

func (c *Client) do(ctx context.Context, method string, params url.Values, out any) error {
	p := withFormat(params)

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		u := *c.endpoint
		u.RawQuery = p.Encode()
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint.String(), strings.NewReader(p.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("api request",
		"method", method,
		"action", p.Get("action"),
		"params", log.SanitizeValues(p).Encode(),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p.Get("action"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api response",
		"action", p.Get("action"),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(body)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(excerpt)}
	}

	return decode(body, out)
}

func decode(body []byte, out any) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
