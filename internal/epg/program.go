// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package epg holds the broadcast program and service model shared by the
// provider client, the selection pipeline and the report renderer.
package epg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// GenreLevelNew is the primary genre code of the "newly broadcast / first-run"
// category in the ARIB genre table.
const GenreLevelNew = 0x7

// NewMarker is the glyph broadcasters put in the title of a first episode.
const NewMarker = "🈟"

// Genre is a single ARIB content descriptor entry.
type Genre struct {
	Lv1 int `json:"lv1"`
	Lv2 int `json:"lv2"`
	Un1 int `json:"un1"`
	Un2 int `json:"un2"`
}

// Program is a scheduled broadcast event as reported by the EPG provider.
// StartAt and Duration are milliseconds (unix epoch and span respectively).
type Program struct {
	ID          int64    `json:"id"`
	EventID     int      `json:"eventId"`
	ServiceID   int      `json:"serviceId"`
	NetworkID   int      `json:"networkId"`
	StartAt     int64    `json:"startAt"`
	Duration    int64    `json:"duration"`
	IsFree      bool     `json:"isFree"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Genres      []Genre  `json:"genres,omitempty"`
	Extended    Extended `json:"extended,omitempty"`
}

// Start returns the program start as a time.Time.
func (p Program) Start() time.Time {
	return time.UnixMilli(p.StartAt)
}

// End returns start plus duration.
func (p Program) End() time.Time {
	return time.UnixMilli(p.StartAt + p.Duration)
}

// HasGenreLevel reports whether any genre entry has the given primary code.
func (p Program) HasGenreLevel(lv1 int) bool {
	for _, g := range p.Genres {
		if g.Lv1 == lv1 {
			return true
		}
	}
	return false
}

// ExtendedField is one title/value pair of the extended event descriptor.
type ExtendedField struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Extended keeps the extended event descriptor in payload order.
// A nil Extended means the provider sent no extended object.
type Extended []ExtendedField

// UnmarshalJSON decodes a JSON object into ordered fields.
func (e *Extended) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*e = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("extended: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("extended: expected object, got %v", tok)
	}

	out := Extended{}
	seen := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("extended: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("extended: unexpected key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("extended: value for %q: %w", key, err)
		}
		// a repeated key keeps its first position and takes the last value
		if i, dup := seen[key]; dup {
			out[i].Value = value
			continue
		}
		seen[key] = len(out)
		out = append(out, ExtendedField{Title: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("extended: %w", err)
	}
	*e = out
	return nil
}

// MarshalJSON encodes the fields back into a JSON object, keeping order.
func (e Extended) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Title)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
