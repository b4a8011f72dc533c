package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"prizma/internal/domain/config"
	domainerr "prizma/internal/domain/errors"
	"prizma/internal/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "prizma/1.0"
)

type Options struct {
	Endpoint   string
	Format     config.FeedFormat
	MaxResults int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the platform feed API. It is the only component that
// reaches the network for content.
type Client struct {
	base       string
	format     config.FeedFormat
	maxResults int
	http       *http.Client
	parser     *gofeed.Parser
}

func New(opt Options) *Client {
	hc := opt.HTTPClient
	if hc == nil {
		timeout := opt.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	format := opt.Format
	if format == "" {
		format = config.FormatJSON
	}
	max := opt.MaxResults
	if max <= 0 || max > config.MaxFeedResults {
		max = config.MaxFeedResults
	}
	return &Client{
		base:       strings.TrimRight(strings.TrimSpace(opt.Endpoint), "/"),
		format:     format,
		maxResults: max,
		http:       hc,
		parser:     gofeed.NewParser(),
	}
}

func NewFromConfig(cfg config.FeedConfig) *Client {
	return New(Options{
		Endpoint:   cfg.Endpoint,
		Format:     cfg.Format,
		MaxResults: cfg.MaxResults,
		Timeout:    cfg.Timeout,
	})
}

func (c *Client) PostsURL() string {
	q := url.Values{}
	q.Set("alt", string(c.format))
	q.Set("max-results", strconv.Itoa(c.maxResults))
	return c.base + "/feeds/posts/default?" + q.Encode()
}

func (c *Client) PageURL(kind, path string) string {
	q := url.Values{}
	q.Set("path", path)
	q.Set("alt", string(c.format))
	return c.base + "/feeds/" + kind + "/default?" + q.Encode()
}

// Posts fetches up to MaxResults entries plus the feed author.
func (c *Client) Posts(ctx context.Context) (*Document, error) {
	body, err := c.fetch(ctx, c.PostsURL())
	if err != nil {
		return nil, err
	}
	doc, err := c.decode(body)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	logger.Infof("[feed] fetched %d entries", len(doc.Feed.Entry))
	return doc, nil
}

// Page fetches a single page or post by its path on the platform and returns
// the first entry.
func (c *Client) Page(ctx context.Context, kind, path string) (Entry, error) {
	body, err := c.fetch(ctx, c.PageURL(kind, path))
	if err != nil {
		return Entry{}, err
	}
	doc, err := c.decode(body)
	if err != nil {
		return Entry{}, err
	}
	if doc.Feed == nil || len(doc.Feed.Entry) == 0 {
		return Entry{}, fmt.Errorf("%w: no entry for %s", domainerr.ErrInvalidFeedFormat, path)
	}
	return doc.Feed.Entry[0], nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerr.ErrFeedUnavailable, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerr.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", domainerr.ErrFeedUnavailable, resp.StatusCode, u)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", domainerr.ErrFeedUnavailable, err)
	}
	return body, nil
}

func (c *Client) decode(body []byte) (*Document, error) {
	if c.format == config.FormatAtom {
		f, err := c.parser.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domainerr.ErrInvalidFeedFormat, err)
		}
		return fromGofeed(f), nil
	}
	return DecodeJSON(body)
}

// DecodeJSON parses a JSON document. A json-in-script body such as
// "// API callback\ncb({...});" is unwrapped first.
func DecodeJSON(body []byte) (*Document, error) {
	payload := bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	if len(payload) > 0 && payload[0] != '{' {
		open := bytes.IndexByte(payload, '(')
		end := bytes.LastIndexByte(payload, ')')
		if open < 0 || end <= open {
			return nil, fmt.Errorf("%w: body is neither JSON nor a script callback", domainerr.ErrInvalidFeedFormat)
		}
		payload = payload[open+1 : end]
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domainerr.ErrInvalidFeedFormat, err)
	}
	return &doc, nil
}
