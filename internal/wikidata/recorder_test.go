package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpriskorn/LexUse/pkg/lexuse/config"
	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
)

// fakeAPI is a minimal action-API double: it hands out tokens on GET and
// records the form values of every POST.
type fakeAPI struct {
	t     *testing.T
	posts []url.Values

	editResponse  string
	watchResponse string
	loginResult   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{
		t:             t,
		editResponse:  `{"success": 1}`,
		watchResponse: `{"watch": [{"title": "Lexeme:L1", "watched": true}]}`,
		loginResult:   "Success",
	}
}

func (f *fakeAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			tokenType := r.URL.Query().Get("type")
			fmt.Fprintf(w, `{"query": {"tokens": {"%stoken": "%s-token-value"}}}`,
				tokenType, tokenType)
			return
		}
		require.NoError(f.t, r.ParseForm())
		f.posts = append(f.posts, r.PostForm)
		switch r.PostForm.Get("action") {
		case "login":
			fmt.Fprintf(w, `{"login": {"result": "%s"}}`, f.loginResult)
		case "wbeditentity":
			fmt.Fprint(w, f.editResponse)
		case "watch":
			fmt.Fprint(w, f.watchResponse)
		default:
			f.t.Errorf("unexpected action %q", r.PostForm.Get("action"))
		}
	}
}

func newTestRecorder(t *testing.T, api *fakeAPI) *Recorder {
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	session, err := NewSession(srv.URL, config.Credentials{Username: "Bot@lexuse", Password: "secret"})
	require.NoError(t, err)

	r := NewRecorder(session, nil)
	r.now = func() time.Time {
		return time.Date(2024, 3, 1, 13, 37, 0, 0, time.UTC)
	}
	return r
}

func bearExample() lexeme.Example {
	return lexeme.Example{
		Sentence:   "Vi vill att björnar skyddas bättre i Sverige.",
		Language:   "sv",
		EntryID:    "L1",
		FormID:     "L1-F1",
		SenseID:    "L1-S1",
		DocumentID: "H801234",
		Published:  time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddUsageExample(t *testing.T) {
	api := newFakeAPI(t)
	r := newTestRecorder(t, api)

	require.NoError(t, r.AddUsageExample(context.Background(), bearExample()))
	require.Len(t, api.posts, 1)

	post := api.posts[0]
	assert.Equal(t, "wbeditentity", post.Get("action"))
	assert.Equal(t, "L1", post.Get("id"))
	assert.Equal(t, "csrf-token-value", post.Get("token"))
	assert.Equal(t, "Added usage example with [[Wikidata:LexUse]]", post.Get("summary"))

	var data struct {
		Claims []struct {
			MainSnak struct {
				Property  string `json:"property"`
				DataValue struct {
					Type  string `json:"type"`
					Value struct {
						Text     string `json:"text"`
						Language string `json:"language"`
					} `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
			Rank            string                       `json:"rank"`
			Qualifiers      map[string][]json.RawMessage `json:"qualifiers"`
			QualifiersOrder []string                     `json:"qualifiers-order"`
			References      []struct {
				Snaks      map[string][]json.RawMessage `json:"snaks"`
				SnaksOrder []string                     `json:"snaks-order"`
			} `json:"references"`
		} `json:"claims"`
	}
	require.NoError(t, json.Unmarshal([]byte(post.Get("data")), &data))
	require.Len(t, data.Claims, 1)

	c := data.Claims[0]
	assert.Equal(t, "P5831", c.MainSnak.Property)
	assert.Equal(t, "monolingualtext", c.MainSnak.DataValue.Type)
	assert.Equal(t, "Vi vill att björnar skyddas bättre i Sverige.", c.MainSnak.DataValue.Value.Text)
	assert.Equal(t, "sv", c.MainSnak.DataValue.Value.Language)
	assert.Equal(t, "normal", c.Rank)

	assert.Equal(t, []string{"P5830", "P6072"}, c.QualifiersOrder)
	assert.Contains(t, string(c.Qualifiers["P5830"][0]), `"L1-F1"`)
	assert.Contains(t, string(c.Qualifiers["P6072"][0]), `"L1-S1"`)

	require.Len(t, c.References, 1)
	ref := c.References[0]
	assert.Equal(t, []string{"P248", "P8433", "P813", "P577"}, ref.SnaksOrder)
	assert.Contains(t, string(ref.Snaks["P248"][0]), `"Q21592569"`)
	assert.Contains(t, string(ref.Snaks["P8433"][0]), `"H801234"`)
	assert.Contains(t, string(ref.Snaks["P813"][0]), `"+2024-03-01T00:00:00Z"`)
	assert.Contains(t, string(ref.Snaks["P577"][0]), `"+2020-06-01T00:00:00Z"`)
}

// A document without a publication date cannot be referenced. The write is
// refused before any request goes out.
func TestAddUsageExampleMissingPublicationDate(t *testing.T) {
	api := newFakeAPI(t)
	r := newTestRecorder(t, api)

	ex := bearExample()
	ex.Published = time.Time{}
	err := r.AddUsageExample(context.Background(), ex)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publication date")
	assert.Empty(t, api.posts)
}

func TestAddUsageExampleAPIError(t *testing.T) {
	api := newFakeAPI(t)
	api.editResponse = `{"error": {"code": "badtoken", "info": "Invalid CSRF token."}}`
	r := newTestRecorder(t, api)

	err := r.AddUsageExample(context.Background(), bearExample())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badtoken")
}

func TestWatch(t *testing.T) {
	api := newFakeAPI(t)
	r := newTestRecorder(t, api)

	require.NoError(t, r.Watch(context.Background(), "L1"))
	require.Len(t, api.posts, 1)
	post := api.posts[0]
	assert.Equal(t, "watch", post.Get("action"))
	assert.Equal(t, "Lexeme:L1", post.Get("titles"))
	assert.Equal(t, "watch-token-value", post.Get("token"))
}

func TestLogin(t *testing.T) {
	api := newFakeAPI(t)
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	session, err := NewSession(srv.URL, config.Credentials{Username: "Bot@lexuse", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, session.Login(context.Background()))

	require.Len(t, api.posts, 1)
	post := api.posts[0]
	assert.Equal(t, "login", post.Get("action"))
	assert.Equal(t, "Bot@lexuse", post.Get("lgname"))
	assert.Equal(t, "login-token-value", post.Get("lgtoken"))
}

func TestLoginFailed(t *testing.T) {
	api := newFakeAPI(t)
	api.loginResult = "Failed"
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	session, err := NewSession(srv.URL, config.Credentials{Username: "Bot@lexuse", Password: "wrong"})
	require.NoError(t, err)
	err = session.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
}
