package iri

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const Prefix = "/api/"

// Ref is a reference to another API resource as it arrives on the wire.
// The server sends the same logical reference either as an IRI string
// ("/api/provinces/3"), as an embedded object ({"id":3,"title":"Sughd"})
// or as an array holding one such object. Decoding collapses all of them
// into a single value; malformed shapes decode to the zero (absent) Ref.
type Ref struct {
	IRI      string
	ID       int
	Title    string
	Resolved bool
}

type embedded struct {
	AtID  string          `json:"@id"`
	ID    json.RawMessage `json:"id"`
	Title string          `json:"title"`
	Name  string          `json:"name"`
}

func Make(resource string, id int) string {
	return fmt.Sprintf("%s%s/%d", Prefix, strings.Trim(resource, "/"), id)
}

// ParseID extracts the trailing numeric id of an IRI. Bare numeric strings
// are accepted too.
func ParseID(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if idx := strings.LastIndex(value, "/"); idx >= 0 {
		value = value[idx+1:]
	}

	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func Unresolved(value string) Ref {
	id, ok := ParseID(value)
	if !ok {
		return Ref{}
	}

	return Ref{IRI: strings.TrimSpace(value), ID: id}
}

func Resolved(resource string, id int, title string) Ref {
	if id <= 0 {
		return Ref{}
	}

	return Ref{IRI: Make(resource, id), ID: id, Title: title, Resolved: true}
}

func (r Ref) IsZero() bool {
	return r.ID <= 0
}

// Canonical renders the write form of the reference for the given resource.
func (r Ref) Canonical(resource string) string {
	if r.IsZero() {
		return ""
	}

	return Make(resource, r.ID)
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	*r = decode(data)

	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(r.IRI)
}

func decode(data []byte) Ref {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Ref{}
	}

	switch data[0] {
	case '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return Ref{}
		}

		return Unresolved(value)
	case '{':
		var obj embedded
		if err := json.Unmarshal(data, &obj); err != nil {
			return Ref{}
		}

		return fromEmbedded(obj)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return Ref{}
		}

		for _, item := range items {
			if ref := decode(item); !ref.IsZero() {
				return ref
			}
		}
	}

	return Ref{}
}

func fromEmbedded(obj embedded) Ref {
	id := 0

	if len(obj.ID) > 0 {
		var number int
		var text string

		switch {
		case json.Unmarshal(obj.ID, &number) == nil:
			id = number
		case json.Unmarshal(obj.ID, &text) == nil:
			id, _ = ParseID(text)
		}
	}

	if id <= 0 {
		id, _ = ParseID(obj.AtID)
	}

	if id <= 0 {
		return Ref{}
	}

	title := obj.Title
	if title == "" {
		title = obj.Name
	}

	return Ref{IRI: obj.AtID, ID: id, Title: strings.TrimSpace(title), Resolved: true}
}
