package social

import (
	"strconv"

	"github.com/oullin/profilesync/handler/payload"
)

// ToData decodes one server entry. Unknown networks keep their handle but
// get no link.
func ToData(res payload.SocialResponse) payload.SocialData {
	handle := ""
	if res.Handle != nil {
		handle = *res.Handle
	}

	data := payload.SocialData{
		ID:      strconv.Itoa(res.ID),
		Network: res.Network,
		Handle:  handle,
	}

	if network, ok := Lookup(res.Network); ok {
		data.URL = network.URL(handle)
	}

	return data
}

// Available lists the catalog networks the profile does not carry yet.
func Available(catalog []string, present []payload.SocialData) []string {
	taken := make(map[string]bool, len(present))
	for _, item := range present {
		taken[item.Network] = true
	}

	var out []string
	for _, key := range catalog {
		if _, known := Lookup(key); known && !taken[key] {
			out = append(out, key)
		}
	}

	return out
}
