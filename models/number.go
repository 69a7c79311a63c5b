package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float field that also accepts numeric strings, as sent by
// HTML forms and some firmware. Present reports whether the field was in the
// payload at all (null counts as absent); Valid reports whether it parsed.
type Number struct {
	Value   float64
	Present bool
	Valid   bool
}

// NewNumber returns a present, valid Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Present: true, Valid: true}
}

// ParseNumber builds a Number from form input. An empty string is absent.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{Present: true}
	}
	return NewNumber(v)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	n.Present = true

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.Value, n.Valid = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = ParseNumber(s)
		n.Present = true
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or def when the number is absent or unparseable.
func (n Number) Or(def float64) float64 {
	if n.Present && n.Valid {
		return n.Value
	}
	return def
}
