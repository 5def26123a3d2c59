package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed portal response")

// Page is one fetched window of a list, independent of the wire result key.
type Page[T any] struct {
	Items []T
	// Wire holds each item as the portal sent it, fields T does not declare
	// included. Wire[i] is Items[i].
	Wire []map[string]any
	// Total is the server count for the current filter set, not len(Items).
	Total int
}

// DecodePage reads {<resultKey>: [...], total: n}. A missing or null result
// key is an empty page; a body that is not an object is malformed.
func DecodePage[T any](body []byte, resultKey string) (Page[T], error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Page[T]{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope == nil {
		return Page[T]{}, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	page := Page[T]{Items: []T{}}
	key := strings.TrimSpace(resultKey)
	if raw, ok := envelope[key]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return Page[T]{}, fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, key, err)
		}
		if err := json.Unmarshal(raw, &page.Wire); err != nil {
			return Page[T]{}, fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, key, err)
		}
	}
	if raw, ok := envelope["total"]; ok && !isNull(raw) {
		var total float64
		if err := json.Unmarshal(raw, &total); err != nil {
			return Page[T]{}, fmt.Errorf("%w: decode total: %v", ErrMalformedResponse, err)
		}
		page.Total = int(total)
	} else {
		page.Total = len(page.Items)
	}
	return page, nil
}

// DecodeRecord reads a single entity, unwrapping a {"data": {...}} envelope
// when the portal sends one.
func DecodeRecord[T any](body []byte) (T, error) {
	var record T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || isNull(trimmed) {
		return record, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err == nil && len(wrapper.Data) > 0 && !isNull(wrapper.Data) && wrapper.Data[0] == '{' {
		trimmed = wrapper.Data
	}
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return record, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return record, nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
