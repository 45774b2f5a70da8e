package filestore

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/metalagman/todo/internal/task"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk layout.
type Document struct {
	Tasks []task.Task `json:"tasks" yaml:"tasks"`
}

// Codec encodes and decodes a Document.
type Codec interface {
	Marshal(doc Document) ([]byte, error)
	Unmarshal(data []byte, doc *Document) error
}

// CodecFor picks the codec from the file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	default:
		return JSONCodec{}
	}
}

// JSONCodec stores the document as indented JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (JSONCodec) Unmarshal(data []byte, doc *Document) error {
	return json.Unmarshal(data, doc)
}

// YAMLCodec stores the document as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

func (YAMLCodec) Unmarshal(data []byte, doc *Document) error {
	return yaml.Unmarshal(data, doc)
}
