package payload

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/oullin/profilesync/pkg/iri"
)

type EducationResponse struct {
	ID                int     `json:"id"`
	Institution       string  `json:"institution"`
	Occupation        iri.Ref `json:"occupation"`
	DateStart         Year    `json:"dateStart"`
	DateEnd           Year    `json:"dateEnd"`
	CurrentlyStudying bool    `json:"currentlyStudying"`
}

// EducationPayload is the write form of one education entry. Key carries the
// local identity (server id or placeholder) and never reaches the wire.
type EducationPayload struct {
	Key               string  `json:"-"`
	ID                *int    `json:"id,omitempty"`
	Institution       string  `json:"institution"`
	Occupation        *string `json:"occupation"`
	DateStart         int     `json:"dateStart"`
	DateEnd           *int    `json:"dateEnd"`
	CurrentlyStudying bool    `json:"currentlyStudying"`
}

type EducationInput struct {
	Institution       string `json:"institution" validate:"required,min=2"`
	OccupationID      int    `json:"occupationId" validate:"omitempty,gt=0"`
	StartYear         int    `json:"startYear" validate:"required,gte=1900,lte=2100"`
	EndYear           *int   `json:"endYear" validate:"omitempty,gte=1900,lte=2100"`
	CurrentlyStudying bool   `json:"currentlyStudying" validate:"excluded_with=EndYear"`
}

type EducationData struct {
	ID                string `json:"id"`
	Institution       string `json:"institution"`
	Specialty         string `json:"specialty"`
	OccupationIRI     string `json:"occupationIri"`
	StartYear         int    `json:"startYear"`
	EndYear           *int   `json:"endYear"`
	CurrentlyStudying bool   `json:"currentlyStudying"`
}

// Year accepts 2019, "2019" and "2019-09-01T00:00:00+00:00".
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	*y = 0
	data = bytes.TrimSpace(data)

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var number int
	if err := json.Unmarshal(data, &number); err == nil {
		*y = Year(number)

		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return nil
	}

	text = strings.TrimSpace(text)
	if len(text) >= 4 {
		text = text[:4]
	}

	if number, err := strconv.Atoi(text); err == nil {
		*y = Year(number)
	}

	return nil
}

func (y Year) Ptr() *int {
	if y <= 0 {
		return nil
	}

	value := int(y)

	return &value
}
