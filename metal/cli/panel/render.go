package panel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/cli"
)

func PrintProfile(p payload.ProfileData) {
	if p.IsEmpty() {
		cli.Warningln("The profile could not be loaded.")
		return
	}

	fmt.Println()
	cli.Cyanln(fmt.Sprintf("  %s (#%d)", p.Name, p.ID))
	cli.Pairln("  Rating", fmt.Sprintf("%s from %d review(s)", cli.Stars(p.Rating), p.Reviews))
	cli.Pairln("  Email", p.Email)
	cli.Pairln("  Avatar", p.Avatar)
	cli.Pairln("  Specialties", strings.Join(p.Specialties, ", "))
	cli.Pairln("  Work area", p.WorkArea)
	cli.Pairln("  Remote work", yesNo(p.CanWorkRemotely))

	section("Addresses", len(p.Addresses))
	for _, a := range p.Addresses {
		item(a.ID, a.DisplayText)
	}

	section("Education", len(p.Education))
	for _, e := range p.Education {
		years := strconv.Itoa(e.StartYear) + " - "
		switch {
		case e.CurrentlyStudying:
			years += "now"
		case e.EndYear != nil:
			years += strconv.Itoa(*e.EndYear)
		}

		item(e.ID, fmt.Sprintf("%s, %s (%s)", e.Institution, e.Specialty, years))
	}

	section("Social networks", len(p.SocialNetworks))
	for _, s := range p.SocialNetworks {
		item(s.ID, fmt.Sprintf("%s %s", s.Network, s.URL))
	}

	section("Phones", len(p.Phones))
	for _, ph := range p.Phones {
		item(ph.Type, ph.Number)
	}

	section("Gallery", len(p.WorkExamples))
	for _, w := range p.WorkExamples {
		item(strconv.Itoa(w.ID), w.URL)
	}

	section("Services", len(p.Services))
	for _, s := range p.Services {
		item(strconv.Itoa(s.ID), fmt.Sprintf("%s (%.2f)%s", s.Title, s.Budget, inactive(s.Active)))
	}

	section("Latest reviews", len(p.LatestReviews))
	for _, r := range p.LatestReviews {
		item(strconv.Itoa(r.ID), fmt.Sprintf("%s %s", cli.Stars(r.Rating), r.Excerpt))
	}

	fmt.Println()
}

func PrintSnapshot(p payload.ProfileData, takenAt time.Time) {
	cli.Blueln(fmt.Sprintf("  Snapshot taken at %s", takenAt.UTC().Format(time.RFC3339)))
	PrintProfile(p)
}

func section(title string, count int) {
	cli.Magentaln(fmt.Sprintf("  %s (%d)", title, count))
}

func item(id, text string) {
	fmt.Printf("    [%s] %s\n", id, text)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}

func inactive(active bool) string {
	if active {
		return ""
	}

	return " inactive"
}
