package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads an exported Figma file. Both the full API response
// ({"document": ...}) and a bare document node are accepted.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeFile(data)
}

// DecodeFile decodes an exported Figma file from memory.
func DecodeFile(data []byte) (*File, error) {
	var probe struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing figma file: %w", err)
	}
	var f File
	if len(probe.Document) > 0 {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing figma file: %w", err)
		}
		return &f, nil
	}
	if err := json.Unmarshal(data, &f.Document); err != nil {
		return nil, fmt.Errorf("parsing figma document node: %w", err)
	}
	f.Name = f.Document.Name
	return &f, nil
}

// CommentsPath is the side-car path holding comments for an exported file:
// "deck.json" -> "deck.comments.json".
func CommentsPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".comments.json"
}

// LoadComments reads a comments side-car. It accepts either the Figma
// comments API response or a flat {"node_id": "message"} object.
// A missing file yields an empty map.
func LoadComments(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var resp struct {
		Comments []apiComment `json:"comments"`
	}
	if err := json.Unmarshal(data, &resp); err == nil && resp.Comments != nil {
		return commentsByNode(resp.Comments), nil
	}
	flat := map[string]string{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return flat, nil
}

// FileSource serves exported files from disk, keyed by path.
type FileSource struct{}

// Fetch implements extract.Source for local exports.
func (FileSource) Fetch(_ context.Context, path string) (*File, map[string]string, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	comments, err := LoadComments(CommentsPath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, comments, nil
}
