package payload

import "github.com/oullin/profilesync/pkg/iri"

type GalleryResponse struct {
	ID     int            `json:"id"`
	User   iri.Ref        `json:"user"`
	Images []GalleryImage `json:"images"`
}

type GalleryImage struct {
	ID    int    `json:"id,omitempty"`
	Image string `json:"image"`
}

type GalleryPayload struct {
	Images []GalleryImage `json:"images"`
}

type WorkExampleData struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
	URL  string `json:"url"`
}
