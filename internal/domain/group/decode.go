package group

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// DecodeList turns a raw group list into typed groups. Accepted shapes:
// a JSON array of objects, or a JSON string holding such an array written
// either as JSON or as a literal list of mappings ('single quotes', None).
// Anything else yields an empty list. Non-object items and records without
// a numeric id are skipped.
func DecodeList(raw json.RawMessage) []Group {
	var value any
	if err := UnmarshalNumbers(raw, &value); err != nil {
		return nil
	}
	if text, ok := value.(string); ok {
		return ParseText(text)
	}
	return fromValue(value)
}

// ParseText decodes a textual encoding of a group list.
func ParseText(text string) []Group {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var value any
	if err := UnmarshalNumbers([]byte(text), &value); err == nil {
		return fromValue(value)
	}
	value, err := parseLiteral(text)
	if err != nil {
		return nil
	}
	return fromValue(value)
}

func fromValue(value any) []Group {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	groups := make([]Group, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := ParseID(rec["id"])
		if !ok {
			continue
		}
		groups = append(groups, New(id, toText(rec["name"]), toText(rec["status"])))
	}
	return groups
}

// UnmarshalNumbers decodes a single JSON value into v, keeping numbers
// inside interface values as json.Number so large ids stay exact.
func UnmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("trailing data after JSON value")

// ParseID reads an identifier from a decoded value: an integer, an
// integral number, or a decimal string.
func ParseID(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if id, err := x.Int64(); err == nil {
			return id, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(x)
	case int64:
		return x, true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
