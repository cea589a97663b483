package address

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/iri"
)

const PlaceholderPrefix = "new-"

// Level is one administrative level of an address, in display order.
type Level int

const (
	Province Level = iota
	City
	District
	Suburb
	Settlement
	Community
	Village
)

var Levels = []Level{Province, City, District, Suburb, Settlement, Community, Village}

var resources = map[Level]string{
	Province:   "provinces",
	City:       "cities",
	District:   "districts",
	Suburb:     "suburbs",
	Settlement: "settlements",
	Community:  "communities",
	Village:    "villages",
}

var fields = map[Level]string{
	Province:   "province",
	City:       "city",
	District:   "districts",
	Suburb:     "suburb",
	Settlement: "settlement",
	Community:  "community",
	Village:    "village",
}

func (l Level) Resource() string {
	return resources[l]
}

func (l Level) Field() string {
	return fields[l]
}

// Titles resolves the human title of a taxonomy entry.
type Titles interface {
	Title(level Level, id int) string
}

// Decode extracts the ids of every level from the object-expanded form.
func Decode(res payload.AddressResponse) payload.AddressValue {
	return payload.AddressValue{
		ProvinceID:   idOf(res.Province),
		CityID:       idOf(res.City),
		DistrictIDs:  res.Districts.IDs(),
		SuburbID:     idOf(res.Suburb),
		SettlementID: idOf(res.Settlement),
		CommunityID:  idOf(res.Community),
		VillageID:    idOf(res.Village),
	}
}

func Valid(v payload.AddressValue) bool {
	if v.ProvinceID == nil || *v.ProvinceID <= 0 {
		return false
	}

	return (v.CityID != nil && *v.CityID > 0) || len(v.DistrictIDs) > 0
}

// Encode renders the IRI form required on PATCH, or nil when the province
// invariant is not met.
func Encode(v payload.AddressValue) payload.AddressSubmission {
	if !Valid(v) {
		return nil
	}

	return EncodeLevels(v)
}

// EncodeLevels renders every present level without checking the submission
// invariant. It is used to carry untouched siblings through a whole-collection
// write unchanged.
func EncodeLevels(v payload.AddressValue) payload.AddressSubmission {
	out := payload.AddressSubmission{}

	single := map[Level]*int{
		Province:   v.ProvinceID,
		City:       v.CityID,
		Suburb:     v.SuburbID,
		Settlement: v.SettlementID,
		Community:  v.CommunityID,
		Village:    v.VillageID,
	}

	for level, id := range single {
		if id != nil && *id > 0 {
			out[level.Field()] = iri.Make(level.Resource(), *id)
		}
	}

	if len(v.DistrictIDs) > 0 {
		districts := make([]string, 0, len(v.DistrictIDs))
		for _, id := range v.DistrictIDs {
			districts = append(districts, iri.Make(District.Resource(), id))
		}

		out[District.Field()] = districts
	}

	return out
}

// DisplayText joins the titles of the present levels, province first.
func DisplayText(res payload.AddressResponse) string {
	parts := []string{
		res.Province.Title,
		res.City.Title,
		strings.Join(res.Districts.Titles(), ", "),
		res.Suburb.Title,
		res.Settlement.Title,
		res.Community.Title,
		res.Village.Title,
	}

	return join(parts)
}

// DisplayTextFrom builds the display text of a locally selected address.
func DisplayTextFrom(v payload.AddressValue, titles Titles) string {
	if titles == nil {
		return ""
	}

	title := func(level Level, id *int) string {
		if id == nil {
			return ""
		}

		return titles.Title(level, *id)
	}

	var districts []string
	for _, id := range v.DistrictIDs {
		if t := titles.Title(District, id); t != "" {
			districts = append(districts, t)
		}
	}

	return join([]string{
		title(Province, v.ProvinceID),
		title(City, v.CityID),
		strings.Join(districts, ", "),
		title(Suburb, v.SuburbID),
		title(Settlement, v.SettlementID),
		title(Community, v.CommunityID),
		title(Village, v.VillageID),
	})
}

func ToData(res payload.AddressResponse) payload.AddressData {
	return payload.AddressData{
		ID:          strconv.Itoa(res.ID),
		DisplayText: DisplayText(res),
		Value:       Decode(res),
	}
}

func NewPlaceholderID(now time.Time) string {
	return fmt.Sprintf("%s%d", PlaceholderPrefix, now.UnixMilli())
}

func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

func idOf(ref iri.Ref) *int {
	if ref.IsZero() {
		return nil
	}

	id := ref.ID

	return &id
}

func join(parts []string) string {
	var present []string

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			present = append(present, part)
		}
	}

	return strings.Join(present, ", ")
}

// WorkArea joins the display text of every address.
func WorkArea(addresses []payload.AddressData) string {
	var parts []string

	for _, item := range addresses {
		if item.DisplayText != "" {
			parts = append(parts, item.DisplayText)
		}
	}

	return strings.Join(parts, "; ")
}
