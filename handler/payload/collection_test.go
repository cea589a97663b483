package payload

import (
	"encoding/json"
	"testing"
)

func TestCollectionDecodesArraysAndEnvelopes(t *testing.T) {
	bodies := map[string]string{
		"array":  `[{"id":1},{"id":2}]`,
		"hydra":  `{"hydra:member":[{"id":1},{"id":2}],"hydra:totalItems":2}`,
		"jsonld": `{"member":[{"id":1},{"id":2}],"totalItems":2}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var res Collection[GalleryResponse]

			if err := json.Unmarshal([]byte(body), &res); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if len(res.Items) != 2 || res.Total != 2 || res.Items[1].ID != 2 {
				t.Fatalf("unexpected collection: %+v", res)
			}
		})
	}
}

func TestNetworkKeysAcceptBothShapes(t *testing.T) {
	var keys, objects NetworkKeys

	if err := json.Unmarshal([]byte(`["telegram","vk"]`), &keys); err != nil {
		t.Fatalf("unmarshal keys: %v", err)
	}

	if err := json.Unmarshal([]byte(`[{"network":"telegram"},{"key":"vk"}]`), &objects); err != nil {
		t.Fatalf("unmarshal objects: %v", err)
	}

	if len(keys) != 2 || len(objects) != 2 || objects[1] != "vk" {
		t.Fatalf("unexpected keys: %v %v", keys, objects)
	}
}
