// Package wikidata implements the three Wikidata-facing collaborators: the
// SPARQL query source that supplies form tasks and senses, the logged-in
// action-API session, and the recorder that writes approved usage examples
// back as referenced statements.
package wikidata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dpriskorn/LexUse/pkg/lexuse/config"
)

// DefaultAPIURL is the MediaWiki action API endpoint of Wikidata.
const DefaultAPIURL = "https://www.wikidata.org/w/api.php"

// Session is a logged-in action-API session. It is constructed explicitly
// and passed into the recorder; there is no process-wide login state.
type Session struct {
	apiURL string
	creds  config.Credentials
	client *http.Client
}

// NewSession creates an unauthenticated session. Call Login before use.
func NewSession(apiURL string, creds config.Credentials) (*Session, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Session{
		apiURL: apiURL,
		creds:  creds,
		client: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

type tokenResponse struct {
	Query struct {
		Tokens map[string]string `json:"tokens"`
	} `json:"query"`
}

type loginResponse struct {
	Login struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
	} `json:"login"`
}

// Login performs the bot-password login token dance.
func (s *Session) Login(ctx context.Context) error {
	loginToken, err := s.token(ctx, "login")
	if err != nil {
		return errors.Wrap(err, "fetch login token")
	}

	var payload loginResponse
	err = s.post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {s.creds.Username},
		"lgpassword": {s.creds.Password},
		"lgtoken":    {loginToken},
	}, &payload)
	if err != nil {
		return errors.Wrap(err, "login")
	}
	if payload.Login.Result != "Success" {
		return errors.Errorf("login failed: %s %s", payload.Login.Result, payload.Login.Reason)
	}
	return nil
}

// token fetches a fresh token of the given type ("login", "csrf", "watch").
func (s *Session) token(ctx context.Context, tokenType string) (string, error) {
	var payload tokenResponse
	err := s.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {tokenType},
	}, &payload)
	if err != nil {
		return "", err
	}
	tok, ok := payload.Query.Tokens[tokenType+"token"]
	if !ok || tok == "" {
		return "", errors.Errorf("no %s token in response", tokenType)
	}
	return tok, nil
}

func (s *Session) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Session) post(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, out)
}

func (s *Session) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("action api: HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
