package remote

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Document is one stored record. Data is the full JSON object, id included.
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// DecodeAll decodes every document into a T, keeping document order.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// encodeWithID marshals v as a JSON object and sets its id field.
func encodeWithID(v any, id string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	fields["id"] = id
	return json.Marshal(fields)
}

// merge overlays fields on the stored object. The id field is immutable.
func merge(stored []byte, fields map[string]any) ([]byte, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(stored, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal stored document: %w", err)
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal merged document: %w", err)
	}
	return out, nil
}
