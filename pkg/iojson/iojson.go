// Package iojson reads and writes JSON for command line output, either as
// indented documents or as one compact object per line.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Error is the JSON shape written to stderr when a command fails in a
// machine-readable mode.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func jsonError(msg string, jsonErr error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// MarshalError renders msg and data as an Error. If data cannot be
// marshaled, the marshaling failure is reported in its place.
func MarshalError(msg string, data map[string]any) string {
	bits, err := json.Marshal(Error{Message: msg, Data: data})
	if err != nil {
		return jsonError(msg, err)
	}
	return string(bits)
}

// WriteError writes an Error line to ew.
func WriteError(ew io.Writer, msg string, data map[string]any) error {
	_, err := fmt.Fprintln(ew, MarshalError(msg, data))
	return err
}

// WriteWith writes obj as indented JSON to w. Marshaling failures are
// reported on ew.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, jsonError("error marshaling in iojson.WriteWith", err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Write calls WriteWith with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}

// WriteLine writes obj as a single compact JSON line.
func WriteLine(w io.Writer, obj any) error {
	return json.NewEncoder(w).Encode(obj)
}

// WriteLines calls WriteLine for each item.
func WriteLines[T any](w io.Writer, items []T) error {
	for _, item := range items {
		if err := WriteLine(w, item); err != nil {
			return err
		}
	}
	return nil
}
