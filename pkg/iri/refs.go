package iri

import (
	"bytes"
	"encoding/json"
)

// Refs decodes either a single reference or an array of references.
type Refs []Ref

func (r *Refs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = nil

	if len(data) == 0 || data[0] != '[' {
		if ref := decode(data); !ref.IsZero() {
			*r = Refs{ref}
		}

		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	for _, item := range items {
		if ref := decode(item); !ref.IsZero() {
			*r = append(*r, ref)
		}
	}

	return nil
}

func (r Refs) IDs() []int {
	var ids []int

	for _, ref := range r {
		ids = append(ids, ref.ID)
	}

	return ids
}

func (r Refs) Titles() []string {
	var titles []string

	for _, ref := range r {
		if ref.Title != "" {
			titles = append(titles, ref.Title)
		}
	}

	return titles
}
