package sqlparse

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
)

// ReadFile reads a SQL dump from disk. Dumps exported from Windows tooling
// are frequently UTF-16 encoded; the BOM decides which decoder is used.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read sql file: %w", err)
	}
	return decodeSQL(data)
}

func decodeSQL(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode utf-16le sql: %w", err)
		}
		return string(out), nil
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode utf-16be sql: %w", err)
		}
		return string(out), nil
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	}
	return string(data), nil
}
