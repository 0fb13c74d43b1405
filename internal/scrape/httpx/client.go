package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124 Safari/537.36"

// Cap on how much of a page we ever read into memory.
const maxBodyBytes = 2 << 20

type Options struct {
	Timeout   time.Duration
	PoolSize  int
	Retries   int           // idempotent (GET) requests only
	Backoff   time.Duration // base delay, doubled per retry
	UserAgent string
	HostRPS   float64
	HostBurst int
}

// Client is the pooled, retry-aware HTTP client every adapter shares.
type Client struct {
	hc      *http.Client
	limiter *HostLimiter
	ua      string
	retries int
	backoff time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 64
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 300 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.HostRPS <= 0 {
		opts.HostRPS = 4
	}
	if opts.HostBurst <= 0 {
		opts.HostBurst = 4
	}

	tr := &http.Transport{
		MaxIdleConns:        opts.PoolSize,
		MaxIdleConnsPerHost: opts.PoolSize,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		hc:      &http.Client{Transport: tr, Timeout: opts.Timeout},
		limiter: NewHostLimiter(opts.HostRPS, opts.HostBurst),
		ua:      opts.UserAgent,
		retries: opts.Retries,
		backoff: opts.Backoff,
	}
}

func retryableStatus(code int) bool {
	return code == 429 || code == 502 || code == 503 || code == 504
}

// Do sends the request, waiting on the per-host limiter first. GET requests
// are retried on transport errors and 429/5xx a bounded number of times;
// anything else goes out exactly once.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.ua)
	}

	tries := 1
	if req.Method == http.MethodGet {
		tries += c.retries
	}

	var lastErr error
	delay := c.backoff
	for i := 0; i < tries; i++ {
		if i > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.limiter.WaitURL(req.Context(), req.URL.String()); err != nil {
			return nil, err
		}

		res, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if retryableStatus(res.StatusCode) && i < tries-1 {
			lastErr = fmt.Errorf("status %d", res.StatusCode)
			io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
			res.Body.Close()
			continue
		}
		return res, nil
	}
	return nil, lastErr
}

func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", rawURL, res.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(v)
}

// GetBody fetches rawURL and returns up to maxBodyBytes of the body plus the
// final URL after redirects (some adapters derive paths from it).
func (c *Client) GetBody(ctx context.Context, rawURL string) (body []byte, finalURL string, err error) {
	res, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, res.Request.URL.String(), fmt.Errorf("get %s: status %d", rawURL, res.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, "", err
	}
	return b, res.Request.URL.String(), nil
}

// GetDoc fetches rawURL and parses it as HTML.
func (c *Client) GetDoc(ctx context.Context, rawURL string) (*goquery.Document, string, error) {
	b, finalURL, err := c.GetBody(ctx, rawURL)
	if err != nil {
		return nil, finalURL, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, finalURL, fmt.Errorf("parse html %s: %w", rawURL, err)
	}
	return doc, finalURL, nil
}
