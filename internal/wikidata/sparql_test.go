package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formTasksResponse = `{
  "results": {
    "bindings": [
      {
        "l": {"type": "uri", "value": "http://www.wikidata.org/entity/L1"},
        "form": {"type": "uri", "value": "http://www.wikidata.org/entity/L1-F1"},
        "word": {"type": "literal", "value": "björnar"},
        "catLabel": {"type": "literal", "value": "noun"}
      },
      {
        "l": {"type": "uri", "value": "http://www.wikidata.org/entity/L2"},
        "form": {"type": "uri", "value": "http://www.wikidata.org/entity/L2-F3"},
        "word": {"type": "literal", "value": "springa"},
        "catLabel": {"type": "literal", "value": "verb"}
      }
    ]
  }
}`

const sensesResponse = `{
  "results": {
    "bindings": [
      {
        "sense": {"type": "uri", "value": "http://www.wikidata.org/entity/L1-S1"},
        "gloss": {"type": "literal", "xml:lang": "sv", "value": "stort rovdjur"}
      },
      {
        "sense": {"type": "uri", "value": "http://www.wikidata.org/entity/L1-S2"},
        "gloss": {"type": "literal", "xml:lang": "sv", "value": "börsnedgång"}
      }
    ]
  }
}`

func TestFormTasks(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(formTasksResponse))
	}))
	defer srv.Close()

	c := &QueryClient{
		Endpoint:    srv.URL,
		LanguageQID: "Q9027",
		ResultSize:  100,
		Offset:      50,
	}
	tasks, err := c.FormTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "L1", tasks[0].EntryID)
	assert.Equal(t, "L1-F1", tasks[0].FormID)
	assert.Equal(t, "björnar", tasks[0].Word)
	assert.Equal(t, "noun", tasks[0].Category)
	assert.Equal(t, "verb", tasks[1].Category)

	assert.Contains(t, query, "wd:Q9027")
	assert.Contains(t, query, "LIMIT 100")
	assert.Contains(t, query, "OFFSET 50")
	// Lexemes that already carry a usage example are excluded.
	assert.Contains(t, query, "MINUS {?l wdt:P5831 ?example.}")
}

func TestFormTasksEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": {"bindings": []}}`))
	}))
	defer srv.Close()

	c := &QueryClient{Endpoint: srv.URL, LanguageQID: "Q9027", ResultSize: 100}
	tasks, err := c.FormTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSenses(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		w.Write([]byte(sensesResponse))
	}))
	defer srv.Close()

	c := &QueryClient{Endpoint: srv.URL, LanguageCode: "sv"}
	senses, err := c.Senses(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, senses, 2)
	assert.Equal(t, "L1-S1", senses[0].SenseID)
	assert.Equal(t, "stort rovdjur", senses[0].Gloss)
	assert.Equal(t, "L1-S2", senses[1].SenseID)

	assert.Contains(t, query, "wd:L1")
	assert.Contains(t, query, `FILTER(LANG(?gloss) = "sv")`)
	// Only senses with a concept link qualify.
	assert.Contains(t, query, "wdt:P5137")
}

func TestQueryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &QueryClient{Endpoint: srv.URL, LanguageQID: "Q9027", ResultSize: 100}
	_, err := c.FormTasks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}

func TestStripEntityPrefix(t *testing.T) {
	assert.Equal(t, "L42", stripEntityPrefix("http://www.wikidata.org/entity/L42"))
	assert.Equal(t, "L42", stripEntityPrefix("L42"))
	assert.False(t, strings.Contains(stripEntityPrefix("http://www.wikidata.org/entity/L42-F1"), "/"))
}
