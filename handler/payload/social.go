package payload

import (
	"bytes"
	"encoding/json"
)

type SocialResponse struct {
	ID      int     `json:"id"`
	Network string  `json:"network"`
	Handle  *string `json:"handle"`
}

// SocialPayload is the write form of one social network entry. An empty
// handle is sent as an explicit null so the server clears it.
type SocialPayload struct {
	Key     string  `json:"-"`
	ID      *int    `json:"id,omitempty"`
	Network string  `json:"network"`
	Handle  *string `json:"handle"`
}

type SocialData struct {
	ID      string `json:"id"`
	Network string `json:"network"`
	Handle  string `json:"handle"`
	URL     string `json:"url"`
}

type PhoneData struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
}

// NetworkKeys decodes the social network catalog, either as a list of keys
// or as a list of {"network": key} objects.
type NetworkKeys []string

func (n *NetworkKeys) UnmarshalJSON(data []byte) error {
	*n = nil
	data = bytes.TrimSpace(data)

	var keys []string
	if err := json.Unmarshal(data, &keys); err == nil {
		*n = keys

		return nil
	}

	var objects []struct {
		Network string `json:"network"`
		Key     string `json:"key"`
	}

	if err := json.Unmarshal(data, &objects); err != nil {
		var envelope Collection[string]
		if err := json.Unmarshal(data, &envelope); err != nil {
			return err
		}

		*n = envelope.Items

		return nil
	}

	for _, item := range objects {
		switch {
		case item.Network != "":
			*n = append(*n, item.Network)
		case item.Key != "":
			*n = append(*n, item.Key)
		}
	}

	return nil
}
