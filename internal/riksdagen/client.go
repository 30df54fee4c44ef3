// Package riksdagen pages through the Riksdagen open-data document search
// API and returns raw documents for a query word.
package riksdagen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/harvest"
)

// DefaultBaseURL is the public document-search endpoint.
const DefaultBaseURL = "http://data.riksdagen.se/dokumentlista/"

// pageSize is fixed by the API: 20 documents per result page.
const pageSize = 20

// Client fetches documents for a word. MaxResults caps the pagination
// budget and is rounded down to page-size multiples (minimum one page).
type Client struct {
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
	Log        *zap.SugaredLogger
}

type listDocument struct {
	ID        string `json:"id"`
	Published string `json:"publicerad"`
	Summary   string `json:"summary"`
}

type listResponse struct {
	DocumentList struct {
		Hits      any            `json:"@traffar"`
		Documents []listDocument `json:"dokument"`
	} `json:"dokumentlista"`
}

// Fetch pages through the search results for word. It stops when a page
// response lacks the document list entirely or a page comes back short of a
// full page. No results is not an error: the returned slice is empty.
// Transport and HTTP failures propagate to the caller; there is no built-in
// retry.
func (c *Client) Fetch(ctx context.Context, word string) ([]harvest.Document, error) {
	pages := c.MaxResults / pageSize
	if pages < 1 {
		pages = 1
	}

	var records []harvest.Document
	for page := 1; page <= pages; page++ {
		resp, err := c.fetchPage(ctx, word, page)
		if err != nil {
			return nil, err
		}

		if page == 1 {
			c.log().Infow("corpus search",
				"word", word, "hits", cast.ToInt(resp.DocumentList.Hits))
		}

		// A page without a document list means the API has no (more)
		// results.
		if len(resp.DocumentList.Documents) == 0 {
			break
		}

		for _, d := range resp.DocumentList.Documents {
			records = append(records, harvest.Document{
				ID:        d.ID,
				Summary:   d.Summary,
				Published: parsePublished(d.Published),
			})
		}

		if len(resp.DocumentList.Documents) < pageSize {
			break
		}
	}

	c.log().Debugw("fetched corpus documents", "word", word, "count", len(records))
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, word string, page int) (*listResponse, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	params := url.Values{}
	params.Set("sok", word)
	params.Set("sort", "rel")
	params.Set("sortorder", "desc")
	params.Set("utformat", "json")
	params.Set("a", "s")
	params.Set("p", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "corpus api page %d", page)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("corpus api page %d: HTTP %d", page, resp.StatusCode)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrapf(err, "corpus api page %d: decode", page)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) log() *zap.SugaredLogger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop().Sugar()
}

// parsePublished accepts the date formats the API is known to emit. An
// unparseable or empty date yields the zero time; the recorder refuses to
// write references without a publication date.
func parsePublished(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
