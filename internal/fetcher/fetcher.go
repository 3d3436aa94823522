package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/soundbyte/internal/domain"
)

// ErrUnavailable is returned when neither the live API nor a snapshot could be read
var ErrUnavailable = errors.New("entries unavailable")

const (
	// DefaultPageSize is the page size used to walk the entry listing
	DefaultPageSize = 200
	// DefaultHealthTimeout bounds the liveness probe
	DefaultHealthTimeout = 3 * time.Second

	maxBodySize = 20 * 1024 * 1024
	userAgent   = "soundbyte/1.0 (dashboard)"
)

// Client reads entries from the backend data API
type Client struct {
	BaseURL       string
	PageSize      int
	HealthTimeout time.Duration
	HTTP          *http.Client
}

// New creates a Client for the API rooted at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		PageSize:      DefaultPageSize,
		HealthTimeout: DefaultHealthTimeout,
		HTTP:          &http.Client{Timeout: timeout},
	}
}

// EntriesQuery holds the listing parameters understood by GET /entries
type EntriesQuery struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	Category string
	Date     string
	DateFrom string
	DateTo   string
	Priority string
	Tags     string
	Q        string
}

// Encode renders the query string, omitting empty values and the "all" sentinel
func (q EntriesQuery) Encode() string {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" && val != "all" {
			v.Set(k, val)
		}
	}
	if q.Page > 0 {
		set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		set("limit", strconv.Itoa(q.Limit))
	}
	set("sort", q.Sort)
	set("order", q.Order)
	set("category", q.Category)
	set("date", q.Date)
	set("dateFrom", q.DateFrom)
	set("dateTo", q.DateTo)
	set("priority", q.Priority)
	set("tags", q.Tags)
	set("q", q.Q)
	return v.Encode()
}

// Page is one page of the entry listing
type Page struct {
	OK         bool       `json:"ok"`
	Entries    []apiEntry `json:"entries"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// Snapshot is the static fallback document
type Snapshot struct {
	Version   int        `json:"version"`
	UpdatedAt string     `json:"updatedAt"`
	Entries   []apiEntry `json:"entries"`
}

// apiEntry mirrors the wire shape; nullable strings decode to ""
type apiEntry struct {
	ID        string   `json:"id"`
	Radar     string   `json:"radar"`
	Category  string   `json:"category"`
	Date      string   `json:"date"`
	Cycle     string   `json:"cycle"`
	Priority  string   `json:"priority"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	URL       *string  `json:"url"`
	Source    string   `json:"source"`
	SourceURL string   `json:"sourceUrl"`
	Price     *string  `json:"price"`
	VRAM      *string  `json:"vram"`
	License   *string  `json:"license"`
	Author    *string  `json:"author"`
}

// Health reports whether the backend answers GET /health within HealthTimeout
func (c *Client) Health(ctx context.Context) bool {
	timeout := c.HealthTimeout
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.get(ctx, c.BaseURL+"/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FetchPage retrieves one page of the entry listing
func (c *Client) FetchPage(ctx context.Context, q EntriesQuery) (*Page, error) {
	u := c.BaseURL + "/entries"
	if qs := q.Encode(); qs != "" {
		u += "?" + qs
	}

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch entries: HTTP %d", resp.StatusCode)
	}

	var page Page
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode entries page: %w", err)
	}
	return &page, nil
}

// FetchAll walks every page of the listing, newest first, and concatenates the results
func (c *Client) FetchAll(ctx context.Context) ([]domain.Entry, error) {
	limit := c.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var all []domain.Entry
	for page := 1; ; page++ {
		res, err := c.FetchPage(ctx, EntriesQuery{Page: page, Limit: limit, Sort: "date", Order: "desc"})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		for _, e := range res.Entries {
			all = append(all, e.toEntry())
		}
		if page >= res.TotalPages {
			break
		}
	}
	return all, nil
}

// ReadSnapshot loads the static fallback document from a file path or http(s) URL
func (c *Client) ReadSnapshot(ctx context.Context, location string) ([]domain.Entry, error) {
	body, err := c.open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer body.Close()

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	entries := make([]domain.Entry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		entries = append(entries, e.toEntry())
	}
	return entries, nil
}

func (c *Client) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsURL(location) {
		return os.Open(location)
	}
	resp, err := c.get(ctx, location)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return httpClient.Do(req)
}

// IsURL checks if a string looks like an http(s) URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (e apiEntry) toEntry() domain.Entry {
	// Unparseable dates are kept as the zero Day; such entries match no time window.
	date, _ := domain.ParseDay(prefix(e.Date, 10))
	category := e.Radar
	if category == "" {
		category = e.Category
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Entry{
		ID:        e.ID,
		Category:  domain.Category(category),
		Date:      date,
		Cycle:     e.Cycle,
		Priority:  domain.Priority(e.Priority),
		Title:     PlainText(e.Title),
		Summary:   PlainText(e.Summary),
		Tags:      tags,
		URL:       deref(e.URL),
		Source:    e.Source,
		SourceURL: e.SourceURL,
		Price:     deref(e.Price),
		VRAM:      deref(e.VRAM),
		License:   deref(e.License),
		Author:    deref(e.Author),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
