package wikidata

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
)

// Wikidata properties and items used by the recorded statement.
const (
	propUsageExample      = "P5831"
	propDemonstratesForm  = "P5830"
	propDemonstratesSense = "P6072"
	propStatedIn          = "P248"
	propDocumentID        = "P8433" // Riksdagen document ID
	propRetrieved         = "P813"
	propPublicationDate   = "P577"

	itemRiksdagenOpenData = "Q21592569"

	gregorianCalendar = "http://www.wikidata.org/entity/Q1985727"

	editSummary = "Added usage example with [[Wikidata:LexUse]]"
)

// Recorder writes an approved usage example back as a referenced statement
// on the lexical entry. One write is attempted per accepted candidate; a
// failure is surfaced and never retried.
type Recorder struct {
	session *Session
	log     *zap.SugaredLogger

	// now is swappable in tests; the retrieval-date reference truncates it
	// to midnight UTC.
	now func() time.Time
}

// NewRecorder creates a Recorder bound to a logged-in session.
func NewRecorder(session *Session, log *zap.SugaredLogger) *Recorder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Recorder{session: session, log: log, now: time.Now}
}

type snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property"`
	DataValue *dataValue `json:"datavalue,omitempty"`
}

type dataValue struct {
	Value any    `json:"value"`
	Type  string `json:"type"`
}

type reference struct {
	Snaks      map[string][]snak `json:"snaks"`
	SnaksOrder []string          `json:"snaks-order"`
}

type claim struct {
	MainSnak        snak              `json:"mainsnak"`
	Type            string            `json:"type"`
	Rank            string            `json:"rank"`
	Qualifiers      map[string][]snak `json:"qualifiers"`
	QualifiersOrder []string          `json:"qualifiers-order"`
	References      []reference       `json:"references"`
}

type editResponse struct {
	Success int `json:"success"`
	Error   *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// AddUsageExample records the example as a P5831 monolingual-text statement
// on the entry, qualified with the form and sense ids and referenced with
// the document provenance. A missing publication date aborts the write:
// there is no fallback for that reference.
func (r *Recorder) AddUsageExample(ctx context.Context, ex lexeme.Example) error {
	if ex.Published.IsZero() {
		return errors.Errorf(
			"publication date of document %s is missing, cannot reference the example",
			ex.DocumentID)
	}

	data, err := json.Marshal(map[string]any{
		"claims": []claim{r.buildClaim(ex)},
	})
	if err != nil {
		return err
	}

	token, err := r.session.token(ctx, "csrf")
	if err != nil {
		return errors.Wrap(err, "fetch csrf token")
	}

	var payload editResponse
	err = r.session.post(ctx, url.Values{
		"action":  {"wbeditentity"},
		"id":      {ex.EntryID},
		"data":    {string(data)},
		"summary": {editSummary},
		"token":   {token},
	}, &payload)
	if err != nil {
		return errors.Wrap(err, "write usage example")
	}
	if payload.Error != nil {
		return errors.Errorf("write usage example: %s: %s",
			payload.Error.Code, payload.Error.Info)
	}
	if payload.Success != 1 {
		return errors.New("write usage example: edit did not succeed")
	}

	r.log.Infow("recorded usage example",
		"entry", ex.EntryID, "form", ex.FormID, "sense", ex.SenseID,
		"document", ex.DocumentID)
	return nil
}

// Watch adds the entry's lexeme page to the operator's watchlist.
func (r *Recorder) Watch(ctx context.Context, entryID string) error {
	token, err := r.session.token(ctx, "watch")
	if err != nil {
		return errors.Wrap(err, "fetch watch token")
	}

	var payload struct {
		Error *struct {
			Info string `json:"info"`
		} `json:"error"`
	}
	err = r.session.post(ctx, url.Values{
		"action":        {"watch"},
		"titles":        {"Lexeme:" + entryID},
		"formatversion": {"2"},
		"token":         {token},
	}, &payload)
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	if payload.Error != nil {
		return errors.Errorf("watch: %s", payload.Error.Info)
	}
	return nil
}

func (r *Recorder) buildClaim(ex lexeme.Example) claim {
	return claim{
		MainSnak: snak{
			SnakType: "value",
			Property: propUsageExample,
			DataValue: &dataValue{
				Type: "monolingualtext",
				Value: map[string]string{
					"text":     ex.Sentence,
					"language": ex.Language,
				},
			},
		},
		Type: "statement",
		Rank: "normal",
		Qualifiers: map[string][]snak{
			propDemonstratesForm:  {entitySnak(propDemonstratesForm, "form", ex.FormID)},
			propDemonstratesSense: {entitySnak(propDemonstratesSense, "sense", ex.SenseID)},
		},
		QualifiersOrder: []string{propDemonstratesForm, propDemonstratesSense},
		References: []reference{{
			Snaks: map[string][]snak{
				propStatedIn:        {entitySnak(propStatedIn, "item", itemRiksdagenOpenData)},
				propDocumentID:      {stringSnak(propDocumentID, ex.DocumentID)},
				propRetrieved:       {timeSnak(propRetrieved, midnightUTC(r.now()))},
				propPublicationDate: {timeSnak(propPublicationDate, midnightUTC(ex.Published))},
			},
			SnaksOrder: []string{
				propStatedIn, propDocumentID, propRetrieved, propPublicationDate,
			},
		}},
	}
}

func entitySnak(property, entityType, id string) snak {
	return snak{
		SnakType: "value",
		Property: property,
		DataValue: &dataValue{
			Type: "wikibase-entityid",
			Value: map[string]string{
				"entity-type": entityType,
				"id":          id,
			},
		},
	}
}

func stringSnak(property, value string) snak {
	return snak{
		SnakType: "value",
		Property: property,
		DataValue: &dataValue{
			Type:  "string",
			Value: value,
		},
	}
}

func timeSnak(property string, t time.Time) snak {
	return snak{
		SnakType: "value",
		Property: property,
		DataValue: &dataValue{
			Type: "time",
			Value: map[string]any{
				"time":          t.Format("+2006-01-02T15:04:05Z"),
				"timezone":      0,
				"before":        0,
				"after":         0,
				"precision":     11,
				"calendarmodel": gregorianCalendar,
			},
		},
	}
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
