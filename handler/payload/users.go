package payload

import "github.com/oullin/profilesync/pkg/iri"

// UserResponse is the user aggregate as returned by GET /api/users/{id}.
type UserResponse struct {
	ID               int                 `json:"id"`
	Email            string              `json:"email"`
	Name             string              `json:"name"`
	Surname          string              `json:"surname"`
	Gender           string              `json:"gender"`
	DateOfBirth      string              `json:"dateOfBirth"`
	Occupation       iri.Refs            `json:"occupation"`
	Rating           float64             `json:"rating"`
	Image            string              `json:"image"`
	ImageExternalURL string              `json:"imageExternalUrl"`
	Addresses        []AddressResponse   `json:"addresses"`
	Educations       []EducationResponse `json:"educations"`
	SocialNetworks   []SocialResponse    `json:"socialNetworks"`
	Phone1           string              `json:"phone1"`
	Phone2           string              `json:"phone2"`
	RemoteWork       bool                `json:"remoteWork"`
	Tickets          []TicketResponse    `json:"tickets"`
}

func (u UserResponse) DisplayName() string {
	switch {
	case u.Name != "" && u.Surname != "":
		return u.Name + " " + u.Surname
	case u.Name != "":
		return u.Name
	default:
		return u.Surname
	}
}

type TicketResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Active      bool    `json:"active"`
	Service     bool    `json:"service"`
}

type ServiceData struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Budget float64 `json:"budget"`
	Active bool    `json:"active"`
}
