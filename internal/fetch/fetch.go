// Package fetch resolves reference entries to paper metadata and full-text
// prefixes via Semantic Scholar, Crossref and direct PDF download.
//
// Every lookup consults the cache store first and writes back on success.
// Failures are normal outcomes here: exhausted retries, missing identifiers
// and unparseable payloads all produce empty results, never errors that could
// abort a report run.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/citecheck/internal/cache"
	"github.com/jackzampolin/citecheck/internal/extract"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// contentMaxPages bounds how much of a downloaded PDF is extracted.
	contentMaxPages = 5
)

// titlePattern extracts the first sentence-like fragment after the leading
// ordinal, used as a search query when a reference has no DOI.
var titlePattern = regexp.MustCompile(`^\[\d+\]\s*(.+?)(?:\.\s|\.\s*$)`)

// PaperInfo is the metadata resolved for one reference entry.
// Either field may be empty.
type PaperInfo struct {
	Title    string `json:"title,omitempty"`
	Abstract string `json:"abstract,omitempty"`
}

// Empty reports whether no metadata was resolved.
func (i PaperInfo) Empty() bool {
	return i.Title == "" && i.Abstract == ""
}

// Config holds fetcher construction options.
type Config struct {
	Cache   cache.Store
	Policy  *Policy
	Timeout time.Duration
	Logger  *slog.Logger

	// Base URL overrides (tests).
	S2BaseURL       string
	CrossrefBaseURL string
	HTTPClient      *http.Client
}

// Fetcher resolves reference metadata and content. Safe for concurrent use.
type Fetcher struct {
	cache           cache.Store
	policy          *Policy
	client          *http.Client
	logger          *slog.Logger
	s2BaseURL       string
	crossrefBaseURL string
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemoryStore()
	}
	if cfg.Policy == nil {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.S2BaseURL == "" {
		cfg.S2BaseURL = defaultS2BaseURL
	}
	if cfg.CrossrefBaseURL == "" {
		cfg.CrossrefBaseURL = defaultCrossrefBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		cache:           cfg.Cache,
		policy:          cfg.Policy,
		client:          client,
		logger:          cfg.Logger,
		s2BaseURL:       cfg.S2BaseURL,
		crossrefBaseURL: cfg.CrossrefBaseURL,
	}
}

// Info resolves title/abstract metadata for a reference: cache, then
// Semantic Scholar by DOI, then by heuristic title search. An empty
// PaperInfo means nothing could be resolved.
func (f *Fetcher) Info(ctx context.Context, ref *extract.Reference) PaperInfo {
	key := cache.Key(refKey(ref), cache.PurposeInfo)
	if payload, ok := f.cache.Get(key); ok {
		var info PaperInfo
		if err := json.Unmarshal(payload, &info); err == nil {
			return info
		}
		f.logger.Warn("unparseable cached info, refetching", "key", key)
	}

	var paper *s2Paper
	err := f.policy.Do(ctx, func() error {
		p, lookupErr := f.lookupPaper(ctx, ref)
		if lookupErr != nil {
			return lookupErr
		}
		paper = p
		return nil
	})
	if err != nil || paper == nil {
		f.logger.Warn("paper info unavailable", "ref", ref.RawText, "error", err)
		return PaperInfo{}
	}

	info := PaperInfo{Title: paper.Title, Abstract: paper.Abstract}
	if payload, err := json.Marshal(info); err == nil {
		if err := f.cache.Set(key, payload); err != nil {
			f.logger.Warn("failed to cache paper info", "key", key, "error", err)
		}
	}
	return info
}

// Content resolves a page-bounded full-text prefix for a reference: cache,
// then PDF download via the first resolvable URL (Semantic Scholar open
// access, Crossref, doi.org redirect, raw reference URL). Empty string means
// no content could be resolved.
func (f *Fetcher) Content(ctx context.Context, ref *extract.Reference) string {
	key := cache.Key(refKey(ref), cache.PurposeContent)
	if payload, ok := f.cache.Get(key); ok {
		return string(payload)
	}

	var content string
	err := f.policy.Do(ctx, func() error {
		pdfURL := f.resolvePDFURL(ctx, ref)
		if pdfURL == "" {
			return errors.New("no content URL resolvable")
		}
		text, dlErr := f.downloadAndExtract(ctx, pdfURL)
		if dlErr != nil {
			return dlErr
		}
		content = text
		return nil
	})
	if err != nil || content == "" {
		f.logger.Warn("paper content unavailable", "ref", ref.RawText, "error", err)
		return ""
	}

	if err := f.cache.Set(key, []byte(content)); err != nil {
		f.logger.Warn("failed to cache paper content", "key", key, "error", err)
	}
	return content
}

// lookupPaper tries DOI first, then title search. Rate-limit and transient
// errors propagate so the policy retries; a paper with no usable fields is
// an error too, so later steps in the chain get their chance.
func (f *Fetcher) lookupPaper(ctx context.Context, ref *extract.Reference) (*s2Paper, error) {
	var lastErr error
	if ref.DOI != "" {
		paper, err := f.paperByDOI(ctx, ref.DOI)
		if err == nil {
			return paper, nil
		}
		if IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	if title := HeuristicTitle(ref.RawText); title != "" {
		paper, err := f.searchByTitle(ctx, title)
		if err == nil {
			return paper, nil
		}
		if IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("reference has no DOI and no recognizable title")
	}
	return nil, lastErr
}

// resolvePDFURL walks the URL preference chain. Best effort: each failing
// step just falls through to the next.
func (f *Fetcher) resolvePDFURL(ctx context.Context, ref *extract.Reference) string {
	if paper, err := f.lookupPaper(ctx, ref); err == nil {
		if paper.OpenAccessPdf != nil && paper.OpenAccessPdf.URL != "" {
			return paper.OpenAccessPdf.URL
		}
	}
	if ref.DOI != "" {
		if u, err := f.workURLByDOI(ctx, ref.DOI); err == nil {
			return u
		}
		return "https://doi.org/" + ref.DOI
	}
	return ref.URL
}

// downloadAndExtract fetches a PDF and returns its first pages as text.
// doi.org links are probed with a redirect-following HEAD first so the
// final PDF location is downloaded directly.
func (f *Fetcher) downloadAndExtract(ctx context.Context, pdfURL string) (string, error) {
	if strings.Contains(pdfURL, "doi.org") {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, pdfURL, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		if resp, headErr := f.do(req); headErr == nil {
			resp.Body.Close()
			if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/pdf") {
				pdfURL = resp.Request.URL.String()
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/pdf") {
		return "", fmt.Errorf("%s is not a PDF (content-type %q)", pdfURL, resp.Header.Get("Content-Type"))
	}

	tmp, err := os.CreateTemp("", "citecheck-"+uuid.New().String()[:8]+"-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", Transient(fmt.Errorf("failed to download PDF: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	text, err := extractTextPrefix(tmpName, contentMaxPages)
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return text, nil
}

// do executes an HTTP request and classifies the outcome for the retry
// policy: 429 becomes a RateLimitError carrying Retry-After, 5xx and
// transport failures are transient, other non-2xx are permanent.
func (f *Fetcher) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, Transient(err)
		}
		return nil, Transient(fmt.Errorf("request failed: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		resp.Body.Close()
		return nil, &RateLimitError{RetryAfter: retryAfter}
	case resp.StatusCode >= 500:
		resp.Body.Close()
		return nil, Transient(fmt.Errorf("server error (status %d) from %s", resp.StatusCode, req.URL))
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, fmt.Errorf("request to %s failed (status %d)", req.URL, resp.StatusCode)
	}
	return resp, nil
}

// HeuristicTitle extracts the first sentence-like fragment of a reference's
// raw text, for title-based search when no DOI is present.
func HeuristicTitle(rawText string) string {
	if m := titlePattern.FindStringSubmatch(rawText); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// parseRetryAfter handles the delay-seconds form of the header.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// refKey builds the stable cache-key input from a reference's fields.
func refKey(ref *extract.Reference) string {
	return strings.Join([]string{ref.RawText, ref.DOI, ref.URL}, "|")
}
