// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Wire field names of the single-event (form) shape.
const (
	FormVoterIP     = "VoterIP"
	FormSuccessful  = "Successful"
	FormReason      = "Reason"
	FormUsername    = "pingUsername"
	FormPingbackKey = "pingbackkey"
)

// Wire field names of one merged batch entry.
const (
	batchIP       = "ip"
	batchSuccess  = "success"
	batchReason   = "reason"
	batchUsername = "pb_name"
)

// failureCode is assigned when a result field is present but not numeric.
const failureCode = 1

// Event is one normalized vote outcome. Empty strings mean "absent".
type Event struct {
	SourceIP   string
	ResultCode int
	Reason     string
	Username   string
}

// Successful reports whether the vote site counted the vote.
func (e Event) Successful() bool {
	return e.ResultCode == 0
}

// Shape identifies which wire encoding a notification arrived in.
type Shape int

const (
	ShapeForm Shape = iota
	ShapeBatch
)

func (s Shape) String() string {
	switch s {
	case ShapeForm:
		return "form"
	case ShapeBatch:
		return "json"
	default:
		return "unknown"
	}
}

// Notification is a decoded pingback, either shape.
type Notification struct {
	Shape       Shape
	PingbackKey string
	Events      []Event
}

// NormalizeOptions tunes how raw fields become events.
type NormalizeOptions struct {
	// MissingResultIsSuccess treats an event with no result field at all as
	// a successful vote.
	MissingResultIsSuccess bool
}

// DecodeForm reads the single-event form shape. Missing fields degrade to
// absent values; it never fails.
func DecodeForm(values url.Values, opts NormalizeOptions) Notification {
	_, hasResult := values[FormSuccessful]

	ev := Event{
		SourceIP:   values.Get(FormVoterIP),
		ResultCode: normalizeResult(values.Get(FormSuccessful), hasResult, opts),
		Reason:     values.Get(FormReason),
		Username:   values.Get(FormUsername),
	}

	return Notification{
		Shape:       ShapeForm,
		PingbackKey: values.Get(FormPingbackKey),
		Events:      []Event{ev},
	}
}

type batchBody struct {
	PingbackKey json.RawMessage `json:"pingbackkey"`
	Common      json.RawMessage `json:"Common"`
}

// DecodeBatch reads the JSON batch shape. Each entry of Common is a list of
// single-key fragments that are merged into one record before extraction.
func DecodeBatch(body []byte, opts NormalizeOptions) (Notification, error) {
	var raw batchBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if isNull(raw.Common) {
		return Notification{}, fmt.Errorf("%w: Common is missing", ErrMalformedPayload)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw.Common, &entries); err != nil {
		return Notification{}, fmt.Errorf("%w: Common is not an array", ErrMalformedPayload)
	}

	events := make([]Event, 0, len(entries))
	for i, entry := range entries {
		merged, err := mergeFragments(entry)
		if err != nil {
			return Notification{}, fmt.Errorf("%w: entry %d: %v", ErrMalformedPayload, i, err)
		}
		events = append(events, merged.event(opts))
	}

	key, _ := jsonString(raw.PingbackKey)

	return Notification{
		Shape:       ShapeBatch,
		PingbackKey: key,
		Events:      events,
	}, nil
}

// record is one batch entry after its fragments were merged.
type record map[string]json.RawMessage

func mergeFragments(entry json.RawMessage) (record, error) {
	var fragments []json.RawMessage
	if err := json.Unmarshal(entry, &fragments); err != nil {
		return nil, fmt.Errorf("entry is not an array")
	}

	merged := make(record)
	for _, frag := range fragments {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(frag, &fields); err != nil {
			return nil, fmt.Errorf("fragment is not an object")
		}
		// later fragments overwrite earlier keys
		for k, v := range fields {
			merged[k] = v
		}
	}
	return merged, nil
}

func (r record) event(opts NormalizeOptions) Event {
	result, hasResult := r[batchSuccess]
	return Event{
		SourceIP:   r.text(batchIP),
		ResultCode: normalizeResult(scalarText(result), hasResult, opts),
		Reason:     r.text(batchReason),
		Username:   r.text(batchUsername),
	}
}

func (r record) text(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return scalarText(v)
}

// scalarText renders a JSON scalar as text: strings are unquoted, null is
// empty, anything else is its literal form.
func scalarText(v json.RawMessage) string {
	if isNull(v) {
		return ""
	}
	if s, ok := jsonString(v); ok {
		return s
	}
	return string(bytes.TrimSpace(v))
}

func jsonString(v json.RawMessage) (string, bool) {
	var s string
	if len(v) == 0 || v[0] != '"' {
		return "", false
	}
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// normalizeResult turns the result indicator into a non-negative code.
func normalizeResult(raw string, present bool, opts NormalizeOptions) int {
	if !present {
		if opts.MissingResultIsSuccess {
			return 0
		}
		return failureCode
	}

	n, ok := leadingInt(raw)
	if !ok {
		return failureCode
	}
	if n < 0 {
		n = -n
		if n < 0 {
			// math.MinInt has no positive counterpart
			return failureCode
		}
	}
	return n
}

// leadingInt parses an optionally signed integer at the start of s,
// ignoring anything after it ("12abc" is 12). A 0x or 0X prefix reads the
// digits that follow as hexadecimal ("0x1" is 1); a bare prefix is not a
// number.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	sign := s[:end]

	if rest := s[end:]; len(rest) >= 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		start := end + 2
		end = start
		for end < len(s) && isHexDigit(s[end]) {
			end++
		}
		if end == start {
			return 0, false
		}
		n, err := strconv.ParseInt(sign+s[start:end], 16, 0)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}

	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
