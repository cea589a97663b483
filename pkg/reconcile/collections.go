package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/address"
	"github.com/oullin/profilesync/pkg/phone"
)

const OccupationsResource = "occupations"

var Addresses = Collection[payload.AddressResponse, payload.AddressSubmission]{
	Field:     "addresses",
	Extract:   func(u payload.UserResponse) []payload.AddressResponse { return u.Addresses },
	Normalize: NormalizeAddress,
	Key:       AddressKey,
}

var Education = Collection[payload.EducationResponse, payload.EducationPayload]{
	Field:     "educations",
	Extract:   func(u payload.UserResponse) []payload.EducationResponse { return u.Educations },
	Normalize: NormalizeEducation,
	Key:       func(p payload.EducationPayload) string { return p.Key },
}

var Social = Collection[payload.SocialResponse, payload.SocialPayload]{
	Field:     "socialNetworks",
	Extract:   func(u payload.UserResponse) []payload.SocialResponse { return u.SocialNetworks },
	Normalize: NormalizeSocial,
	Key:       func(p payload.SocialPayload) string { return p.Key },
}

// Phones live on the aggregate as the scalar fields phone1 and phone2.
var Phones = Collection[payload.PhoneData, payload.PhoneData]{
	Field:     "phones",
	Extract:   func(u payload.UserResponse) []payload.PhoneData { return phone.FromFields(u.Phone1, u.Phone2) },
	Normalize: func(p payload.PhoneData) payload.PhoneData { return p },
	Key:       func(p payload.PhoneData) string { return p.ID },
	Encode:    phone.ToFields,
}

// NormalizeAddress renders a received address in IRI form, keeping its id.
// Untouched siblings are carried as they are even when they would not pass
// the submission invariant themselves.
func NormalizeAddress(res payload.AddressResponse) payload.AddressSubmission {
	out := address.EncodeLevels(address.Decode(res))

	if res.ID > 0 {
		out["id"] = res.ID
	}

	return out
}

func AddressKey(sub payload.AddressSubmission) string {
	switch id := sub["id"].(type) {
	case int:
		return strconv.Itoa(id)
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// NormalizeEducation collapses the occupation reference to its IRI, whatever
// shape it arrived in.
func NormalizeEducation(res payload.EducationResponse) payload.EducationPayload {
	out := payload.EducationPayload{
		Key:               strconv.Itoa(res.ID),
		Institution:       strings.TrimSpace(res.Institution),
		DateStart:         int(res.DateStart),
		CurrentlyStudying: res.CurrentlyStudying,
	}

	if res.ID > 0 {
		id := res.ID
		out.ID = &id
	}

	if occupation := res.Occupation.Canonical(OccupationsResource); occupation != "" {
		out.Occupation = &occupation
	}

	if !res.CurrentlyStudying {
		out.DateEnd = res.DateEnd.Ptr()
	}

	return out
}

func NormalizeSocial(res payload.SocialResponse) payload.SocialPayload {
	out := payload.SocialPayload{
		Key:     strconv.Itoa(res.ID),
		Network: res.Network,
	}

	if res.ID > 0 {
		id := res.ID
		out.ID = &id
	}

	if res.Handle != nil && strings.TrimSpace(*res.Handle) != "" {
		handle := strings.TrimSpace(*res.Handle)
		out.Handle = &handle
	}

	return out
}
