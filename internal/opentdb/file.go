package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource serves questions from a local file holding the same payload
// shape the API returns. JSON and YAML files are accepted.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchQuestions re-reads the file on every call and returns at most amount
// questions in file order.
func (s *FileSource) FetchQuestions(ctx context.Context, amount int) ([]RawQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	questions, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	if amount > 0 && amount < len(questions) {
		questions = questions[:amount]
	}
	return questions, nil
}

func LoadFile(path string) ([]RawQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var payload apiResponse
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &payload)
	case ".json":
		err = json.Unmarshal(data, &payload)
	default:
		return nil, fmt.Errorf("unsupported questions file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}

	if payload.ResponseCode != 0 {
		return nil, &ResponseCodeError{Code: payload.ResponseCode}
	}
	return payload.Results, nil
}
