package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
)

// DefaultSPARQLEndpoint is the Wikidata Query Service endpoint.
const DefaultSPARQLEndpoint = "https://query.wikidata.org/sparql"

const entityPrefix = "http://www.wikidata.org/entity/"

// QueryClient is the structured query source: it supplies (entry, form,
// word, category) rows and the qualifying senses of an entry.
type QueryClient struct {
	Endpoint   string
	HTTPClient *http.Client
	Log        *zap.SugaredLogger

	LanguageQID  string // language of the lexemes, e.g. "Q9027"
	LanguageCode string // gloss language filter, e.g. "sv"
	ResultSize   int
	Offset       int
}

type sparqlBinding map[string]struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []sparqlBinding `json:"bindings"`
	} `json:"results"`
}

// formTasksQuery selects forms of lexemes that have grammatical features and
// at least one sense with a concept link (P5137), excluding affix-like entry
// types and lexemes that already carry a usage example (P5831).
const formTasksQuery = `
SELECT DISTINCT ?l ?form ?word ?catLabel
WHERE {
  ?l a ontolex:LexicalEntry; dct:language wd:%s.
  VALUES ?excluded {
    wd:Q62155   # affix
    wd:Q134830  # prefix
    wd:Q102047  # suffix
    wd:Q1153504 # interfix
  }
  MINUS {?l wdt:P31 ?excluded.}
  ?l wikibase:lexicalCategory ?cat.
  ?l ontolex:lexicalForm ?form.
  ?l ontolex:sense ?sense.
  ?sense wdt:P5137 [].
  MINUS {?l wdt:P5831 ?example.}
  ?form wikibase:grammaticalFeature [].
  ?form ontolex:representation ?word.
  SERVICE wikibase:label
  { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],en". }
}
LIMIT %d
OFFSET %d
`

// sensesQuery selects the senses of one lexeme that carry a concept link and
// a gloss in the target language.
const sensesQuery = `
SELECT ?sense ?gloss
WHERE {
  VALUES ?l {wd:%s}.
  ?l ontolex:sense ?sense.
  ?sense skos:definition ?gloss.
  FILTER(LANG(?gloss) = "%s")
  ?sense wdt:P5137 [].
}
`

// FormTasks fetches the batch of (entry, form) pairs to evaluate. An empty
// result set is not an error.
func (c *QueryClient) FormTasks(ctx context.Context) ([]lexeme.FormTask, error) {
	query := fmt.Sprintf(formTasksQuery, c.LanguageQID, c.ResultSize, c.Offset)
	bindings, err := c.query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "fetch form tasks")
	}

	tasks := make([]lexeme.FormTask, 0, len(bindings))
	for _, b := range bindings {
		tasks = append(tasks, lexeme.FormTask{
			EntryID:  stripEntityPrefix(b["l"].Value),
			FormID:   stripEntityPrefix(b["form"].Value),
			Word:     b["word"].Value,
			Category: b["catLabel"].Value,
		})
	}
	c.log().Debugw("fetched form tasks", "count", len(tasks))
	return tasks, nil
}

// Senses fetches the qualifying senses of one lexical entry, in result
// order. An empty result set is not an error.
func (c *QueryClient) Senses(ctx context.Context, entryID string) ([]lexeme.SenseChoice, error) {
	query := fmt.Sprintf(sensesQuery, entryID, c.LanguageCode)
	bindings, err := c.query(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch senses of %s", entryID)
	}

	senses := make([]lexeme.SenseChoice, 0, len(bindings))
	for _, b := range bindings {
		senses = append(senses, lexeme.SenseChoice{
			SenseID: stripEntityPrefix(b["sense"].Value),
			Gloss:   b["gloss"].Value,
		})
	}
	return senses, nil
}

func (c *QueryClient) query(ctx context.Context, query string) ([]sparqlBinding, error) {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultSPARQLEndpoint
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sparql request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("sparql endpoint: HTTP %d", resp.StatusCode)
	}

	var payload sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode sparql response")
	}
	return payload.Results.Bindings, nil
}

func (c *QueryClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (c *QueryClient) log() *zap.SugaredLogger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop().Sugar()
}

func stripEntityPrefix(uri string) string {
	return strings.TrimPrefix(uri, entityPrefix)
}
