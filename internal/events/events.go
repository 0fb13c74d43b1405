package events

import (
	"encoding/json"
	"time"
)

const (
	TypeJobFound      = "job_found"
	TypeScrapeStarted = "scrape_started"
	TypeScrapeDone    = "scrape_done"
)

type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

func Make(typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	b, _ := json.Marshal(Event{Type: typ, At: time.Now().UTC(), Data: raw})
	return string(b)
}

// JobFound is the payload a UI needs to show a fresh posting without a
// round trip to the hits endpoint.
type JobFound struct {
	Company  string `json:"company"`
	Title    string `json:"title"`
	ApplyURL string `json:"applyUrl"`
	Category string `json:"category"`
	Source   string `json:"source"`
}
