// Package export serializes a question list to questions.json.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FileName is the name of the exported file.
	FileName = "questions.json"
	// ContentType is the media type of the exported bytes.
	ContentType = "application/json; charset=utf-8"
)

// Marshal encodes questions as a JSON array indented with two spaces.
// A nil list encodes as []. The input is not modified and equal inputs
// always produce identical bytes.
func Marshal(questions []string) ([]byte, error) {
	if questions == nil {
		questions = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(questions); err != nil {
		return nil, fmt.Errorf("encoding questions: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteFile writes questions.json into dir and returns its path. The data is
// written to a temporary file first, which never outlives the call.
func WriteFile(dir string, questions []string) (string, error) {
	data, err := Marshal(questions)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	target := filepath.Join(dir, FileName)
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("moving %s into place: %w", FileName, err)
	}
	return target, nil
}
