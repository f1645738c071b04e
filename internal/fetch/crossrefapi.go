package fetch

import (
	"context"
	"fmt"
	"net/url"
)

const defaultCrossrefBaseURL = "https://api.crossref.org"

type crossrefWorkResponse struct {
	Message struct {
		URL string `json:"URL"`
	} `json:"message"`
}

// workURLByDOI resolves a DOI to its registered landing URL via Crossref.
func (f *Fetcher) workURLByDOI(ctx context.Context, doi string) (string, error) {
	u := fmt.Sprintf("%s/works/%s", f.crossrefBaseURL, url.PathEscape(doi))

	var resp crossrefWorkResponse
	if err := f.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	if resp.Message.URL == "" {
		return "", fmt.Errorf("crossref record for %s has no URL", doi)
	}
	return resp.Message.URL, nil
}
