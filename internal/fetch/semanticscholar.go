package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const defaultS2BaseURL = "https://api.semanticscholar.org"

// s2Paper is the subset of the Semantic Scholar paper record we consume.
type s2Paper struct {
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	OpenAccessPdf *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

type s2SearchResponse struct {
	Data []s2Paper `json:"data"`
}

const s2Fields = "title,abstract,openAccessPdf"

// paperByDOI looks up a paper record by DOI.
func (f *Fetcher) paperByDOI(ctx context.Context, doi string) (*s2Paper, error) {
	u := fmt.Sprintf("%s/graph/v1/paper/DOI:%s?fields=%s",
		f.s2BaseURL, url.PathEscape(doi), s2Fields)

	var paper s2Paper
	if err := f.getJSON(ctx, u, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

// searchByTitle looks up the best-matching paper record for a title.
func (f *Fetcher) searchByTitle(ctx context.Context, title string) (*s2Paper, error) {
	u := fmt.Sprintf("%s/graph/v1/paper/search?query=%s&limit=1&fields=%s",
		f.s2BaseURL, url.QueryEscape(title), s2Fields)

	var resp s2SearchResponse
	if err := f.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no search results for title %q", title)
	}
	return &resp.Data[0], nil
}

// getJSON performs a GET and decodes the JSON body, classifying transport
// and status failures for the retry policy.
func (f *Fetcher) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", u, err)
	}
	return nil
}
