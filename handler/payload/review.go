package payload

import "github.com/oullin/profilesync/pkg/iri"

type ReviewResponse struct {
	ID          int           `json:"id"`
	Rating      float64       `json:"rating"`
	Description string        `json:"description"`
	User        iri.Ref       `json:"user"`
	Author      iri.Ref       `json:"author"`
	Ticket      iri.Ref       `json:"ticket"`
	Type        string        `json:"type"`
	Images      []ReviewImage `json:"images"`
}

type ReviewImage struct {
	ID    int    `json:"id,omitempty"`
	Image string `json:"image"`
}

type ReviewInput struct {
	UserID      int    `json:"-" validate:"required,gt=0"`
	TicketID    int    `json:"-" validate:"omitempty,gt=0"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=5"`
	Description string `json:"description" validate:"required,min=3"`
	Type        string `json:"type" validate:"omitempty,oneof=client master"`
}

type ReviewPayload struct {
	User        string  `json:"user"`
	Ticket      *string `json:"ticket,omitempty"`
	Rating      int     `json:"rating"`
	Description string  `json:"description"`
	Type        string  `json:"type,omitempty"`
}

type ReviewSummaryData struct {
	ID      int     `json:"id"`
	Rating  float64 `json:"rating"`
	Excerpt string  `json:"excerpt"`
	Author  int     `json:"author"`
}
