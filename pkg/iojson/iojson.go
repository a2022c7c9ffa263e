// Package iojson reads and writes JSON for command line output.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the JSON shape written when output cannot be encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func jsonError(msg string, jsonErr error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// MarshalError encodes msg and data as an [Error]. If data itself cannot be
// encoded the result is a hand-built blob carrying the encoder error.
func MarshalError(msg string, data map[string]any) string {
	bits, err := json.MarshalIndent(Error{Message: msg, Data: data}, "", "  ")
	if err != nil {
		return jsonError(msg, err)
	}

	return string(bits)
}

// WriteWith writes obj as indented JSON to w. Encoding failures are reported
// to ew as an [Error] and do not return an error.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, jsonError("error marshaling output", err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLines writes each item as one compact JSON line. An item that cannot
// be encoded is reported to ew with its index and skipped.
func WriteLines[T any](w io.Writer, ew io.Writer, items []T) error {
	for i, item := range items {
		bits, err := json.Marshal(item)
		if err != nil {
			if _, err := fmt.Fprintln(ew, MarshalError("error marshaling line", map[string]any{
				"index":      i,
				"json_error": err.Error(),
			})); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintln(w, string(bits)); err != nil {
			return err
		}
	}

	return nil
}
