package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BaSui01/verifyflow/internal/tlsutil"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	duckDuckGoLiteURL = "https://lite.duckduckgo.com/lite/"
	duckDuckGoAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxPageBytes      = 2 << 20
)

// DuckDuckGoConfig configures the DuckDuckGo backend.
type DuckDuckGoConfig struct {
	// BaseURL overrides the lite endpoint (tests point it at httptest).
	BaseURL string
	// Timeout is the HTTP client timeout. Defaults to 15s if zero.
	Timeout time.Duration
}

// DuckDuckGo implements Provider by scraping the DuckDuckGo lite HTML page.
type DuckDuckGo struct {
	cfg    DuckDuckGoConfig
	logger *zap.Logger
}

// NewDuckDuckGo creates a DuckDuckGo provider.
func NewDuckDuckGo(cfg DuckDuckGoConfig, logger *zap.Logger) *DuckDuckGo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = duckDuckGoLiteURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDuckGo{cfg: cfg, logger: logger.With(zap.String("provider", "duckduckgo"))}
}

// Name returns the provider name.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Open creates a session with its own transport so that closing the
// session releases every connection it opened.
func (d *DuckDuckGo) Open(_ context.Context) (Session, error) {
	transport := tlsutil.SecureTransport()
	return &ddgSession{
		endpoint:  d.cfg.BaseURL,
		transport: transport,
		client:    &http.Client{Timeout: d.cfg.Timeout, Transport: transport},
		logger:    d.logger,
	}, nil
}

type ddgSession struct {
	endpoint  string
	transport *http.Transport
	client    *http.Client
	logger    *zap.Logger
	closed    bool
}

func (s *ddgSession) Search(ctx context.Context, query string, opts Options) ([]Hit, error) {
	if s.closed {
		return nil, fmt.Errorf("duckduckgo session closed")
	}
	form := url.Values{}
	form.Set("q", query)
	if opts.Region != "" {
		form.Set("kl", opts.Region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", duckDuckGoAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	hits, err := parseLiteResults(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if n := opts.MaxResults; n > 0 && len(hits) > n {
		hits = hits[:n]
	}
	s.logger.Debug("duckduckgo results parsed", zap.Int("hits", len(hits)))
	return hits, nil
}

func (s *ddgSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.transport.CloseIdleConnections()
	return nil
}

// parseLiteResults walks the lite page in document order. Each result-link
// anchor opens a hit and the next result-snippet cell fills its body.
// Sponsored rows are skipped.
func parseLiteResults(r io.Reader) ([]Hit, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	current := -1
	var walk func(n *html.Node, sponsored bool)
	walk = func(n *html.Node, sponsored bool) {
		if n.Type == html.ElementNode {
			if n.Data == "tr" && hasClass(n, "result-sponsored") {
				sponsored = true
			}
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				if sponsored {
					current = -1
					return
				}
				link := resolveLink(attr(n, "href"))
				if link == "" || strings.Contains(link, "duckduckgo.com/y.js") {
					current = -1
					return
				}
				hits = append(hits, Hit{Title: textContent(n), URL: link})
				current = len(hits) - 1
				return
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if current >= 0 && hits[current].Body == "" {
					hits[current].Body = textContent(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, sponsored)
		}
	}
	walk(doc, false)
	return hits, nil
}

// resolveLink unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...).
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent concatenates text nodes and collapses whitespace.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
