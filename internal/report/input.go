package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ReadInput reads the whole stream and decodes it with ParseInput.
// Only a failing reader yields an error; the returned Input is still usable (empty).
func ReadInput(r io.Reader) (Input, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseInput(raw), nil
}

// ParseInput decodes a request document. Empty, malformed or non-object input
// is treated as {}. Absent, falsy or non-array "picks"/"sites" become empty.
func ParseInput(raw []byte) Input {
	doc := decodeObject(raw)
	if doc == nil {
		return Input{}
	}

	var in Input
	for _, item := range asArray(doc["picks"]) {
		in.Picks = append(in.Picks, parsePick(item))
	}
	for _, item := range asArray(doc["sites"]) {
		// null entries carry no risk at all and are dropped
		if item == nil {
			continue
		}
		in.Sites = append(in.Sites, parseSite(item))
	}
	return in
}

func decodeObject(raw []byte) map[string]any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil
	}
	// trailing garbage makes the whole document malformed
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}
	obj, _ := doc.(map[string]any)
	return obj
}

func asArray(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func parsePick(v any) Pick {
	obj, _ := v.(map[string]any)
	return Pick{
		ID:      toLabel(obj["id"]),
		Cost:    toFloat(obj["cost"]),
		Benefit: toFloat(obj["benefit"]),
	}
}

func parseSite(v any) Site {
	obj, _ := v.(map[string]any)
	return Site{Risk: toFloat(obj["Risk"])}
}

// toFloat coerces a loosely typed JSON value into a finite float64, 0 otherwise.
func toFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		f = parseDecimal(t.String())
	case string:
		f = parseDecimal(t)
	case bool:
		if t {
			f = 1
		}
	case float64:
		f = t
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseDecimal(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func toLabel(v any) string {
	switch t := v.(type) {
	case nil:
		return UnknownID
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		// spelled like the Python optimizer that produces the input
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(t)
	}
}
