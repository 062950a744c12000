// Package tour holds the tour document model and the two caller-facing renderings
// of a search result: the allow-listed field projection and the Markdown digest.
package tour

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field names of the allow-listed metadata.
const (
	FieldTourName        = "tour_name"
	FieldCountries       = "countries"
	FieldDurationDays    = "duration_days"
	FieldPrice           = "price"
	FieldItineraryTitles = "itinerary_titles"
)

// Document is a raw search hit. Metadata is whatever the database stored next to
// the text, including internal fields (ids, scores) that must not reach callers.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
	Score    float64
}

// Projected is the caller-facing tour record. Sequences default to empty,
// scalars to null.
type Projected struct {
	TourName        *string  `json:"tour_name"`
	Countries       []string `json:"countries"`
	DurationDays    *int     `json:"duration_days"`
	Price           *float64 `json:"price"`
	ItineraryTitles []string `json:"itinerary_titles"`
}

// Project copies the allow-listed fields of each document, preserving order.
func Project(docs []Document) []Projected {
	out := make([]Projected, len(docs))
	for i := range docs {
		out[i] = ProjectOne(docs[i].Metadata)
	}
	return out
}

// ProjectOne decodes a single metadata bag. Fields of the wrong type are treated as absent.
func ProjectOne(meta map[string]any) Projected {
	p := Projected{
		Countries:       []string{},
		ItineraryTitles: []string{},
	}
	if meta == nil {
		return p
	}

	if s, ok := meta[FieldTourName].(string); ok {
		p.TourName = &s
	}
	p.Countries = stringSlice(meta[FieldCountries])
	p.ItineraryTitles = stringSlice(meta[FieldItineraryTitles])
	if n, ok := integer(meta[FieldDurationDays]); ok {
		p.DurationDays = &n
	}
	if f, ok := number(meta[FieldPrice]); ok {
		p.Price = &f
	}
	return p
}

func stringSlice(v any) []string {
	out := []string{}
	switch vals := v.(type) {
	case []string:
		out = append(out, vals...)
	case []any:
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// integer rejects values outside int. math.MaxInt rounds up to 2^63 as a float64.
func integer(v any) (int, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
