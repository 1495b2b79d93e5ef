// Package encoding provides text decoding utilities for GLB chunk payloads.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeJSONChunk converts a GLB JSON chunk payload to a string.
// A leading UTF-8 byte order mark is dropped and trailing NUL padding written by
// some exporters is trimmed. Invalid byte sequences are replaced with U+FFFD.
func DecodeJSONChunk(data []byte) (string, error) {
	data = TrimNullBytes(data)
	if utf8.Valid(data) && !HasBOM(data) {
		return string(data), nil
	}

	decoder := unicode.UTF8BOM.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// HasBOM returns true if data starts with a UTF-8 byte order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, utf8BOM)
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}
