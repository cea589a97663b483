package payload

import (
	"bytes"
	"encoding/json"
)

// Collection decodes list endpoints that answer either with a plain JSON
// array or with a hydra envelope.
type Collection[T any] struct {
	Items []T
	Total int
}

type envelope[T any] struct {
	HydraMember []T  `json:"hydra:member"`
	Member      []T  `json:"member"`
	HydraTotal  *int `json:"hydra:totalItems"`
	Total       *int `json:"totalItems"`
}

func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	c.Items = nil
	c.Total = 0

	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &c.Items); err != nil {
			return err
		}

		c.Total = len(c.Items)

		return nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	c.Items = env.HydraMember
	if c.Items == nil {
		c.Items = env.Member
	}

	switch {
	case env.HydraTotal != nil:
		c.Total = *env.HydraTotal
	case env.Total != nil:
		c.Total = *env.Total
	default:
		c.Total = len(c.Items)
	}

	return nil
}
