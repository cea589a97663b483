package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/metal/cli/panel"
	"github.com/oullin/profilesync/metal/kernel"
	"github.com/oullin/profilesync/pkg/cli"
	"github.com/oullin/profilesync/pkg/media"
	"github.com/oullin/profilesync/pkg/phone"
	"github.com/oullin/profilesync/pkg/portal"
)

var errUnknownOption = errors.New("unknown option, try again")

// Actions maps menu choices onto profile operations.
type Actions struct {
	app  *kernel.App
	menu *panel.Menu
}

func MakeActions(app *kernel.App, menu *panel.Menu) Actions {
	return Actions{app: app, menu: menu}
}

func (a Actions) Run(ctx context.Context, choice int) error {
	steps := map[int]func(context.Context) error{
		1:  a.showProfile,
		2:  a.addAddress,
		3:  a.removeAddress,
		4:  a.addEducation,
		5:  a.removeEducation,
		6:  a.addSocial,
		7:  a.removeSocial,
		8:  a.setPhone,
		9:  a.removePhone,
		10: a.uploadGallery,
		11: a.removeGalleryImage,
		12: a.clearGallery,
		13: a.uploadAvatar,
		14: a.leaveReview,
		15: a.recomputeRating,
		16: a.showSnapshot,
		17: a.clearSnapshots,
	}

	step, ok := steps[choice]
	if !ok {
		return errUnknownOption
	}

	// every mutation needs the ids and sibling members of the loaded profile
	if choice > 1 && choice < 16 && a.app.GetStore().Snapshot().IsEmpty() {
		if err := a.app.LoadProfile(ctx); err != nil {
			return err
		}
	}

	return step(ctx)
}

func (a Actions) showProfile(ctx context.Context) error {
	if err := a.app.LoadProfile(ctx); err != nil {
		return err
	}

	panel.PrintProfile(a.app.GetStore().Snapshot())

	return nil
}

func (a Actions) addAddress(ctx context.Context) error {
	value := payload.AddressValue{}
	var err error

	if value.ProvinceID, err = a.menu.CaptureNumber("Province id", false); err != nil {
		return err
	}

	if value.CityID, err = a.menu.CaptureNumber("City id (blank for districts)", true); err != nil {
		return err
	}

	if value.CityID == nil {
		if value.DistrictIDs, err = a.menu.CaptureNumbers("District ids, comma separated"); err != nil {
			return err
		}
	}

	if value.VillageID, err = a.menu.CaptureNumber("Village id (optional)", true); err != nil {
		return err
	}

	items, err := a.app.GetHandlers().Addresses.Add(ctx, value)
	if err != nil {
		return err
	}

	cli.Successln(fmt.Sprintf("Address saved. The profile now has %d address(es).", len(items)))

	return nil
}

func (a Actions) removeAddress(ctx context.Context) error {
	id, err := a.menu.CaptureText("Address id", false)
	if err != nil {
		return err
	}

	if _, err := a.app.GetHandlers().Addresses.Delete(ctx, id); err != nil {
		return err
	}

	cli.Successln("Address removed.")

	return nil
}

func (a Actions) addEducation(ctx context.Context) error {
	input := payload.EducationInput{}
	var err error

	if input.Institution, err = a.menu.CaptureText("Institution", false); err != nil {
		return err
	}

	occupation, err := a.menu.CaptureNumber("Occupation id (optional)", true)
	if err != nil {
		return err
	}

	if occupation != nil {
		input.OccupationID = *occupation
	}

	start, err := a.menu.CaptureNumber("Start year", false)
	if err != nil {
		return err
	}

	input.StartYear = *start
	input.CurrentlyStudying = a.menu.Confirm("Currently studying?")

	if !input.CurrentlyStudying {
		if input.EndYear, err = a.menu.CaptureNumber("End year (optional)", true); err != nil {
			return err
		}
	}

	if _, err := a.app.GetHandlers().Education.Add(ctx, input); err != nil {
		return err
	}

	cli.Successln("Education saved.")

	return nil
}

func (a Actions) removeEducation(ctx context.Context) error {
	id, err := a.menu.CaptureText("Education id", false)
	if err != nil {
		return err
	}

	if _, err := a.app.GetHandlers().Education.Delete(ctx, id); err != nil {
		return err
	}

	cli.Successln("Education removed.")

	return nil
}

func (a Actions) addSocial(ctx context.Context) error {
	available, err := a.app.GetHandlers().Social.Available(ctx)
	if err != nil {
		return err
	}

	if len(available) == 0 {
		cli.Warningln("Every supported network is already linked.")
		return nil
	}

	cli.Grayln(fmt.Sprintf("Available: %v", available))

	network, err := a.menu.CaptureText("Network", false)
	if err != nil {
		return err
	}

	handle, err := a.menu.CaptureText("Handle or link", false)
	if err != nil {
		return err
	}

	items, err := a.app.GetHandlers().Social.Add(ctx, network, handle)
	if err != nil {
		return err
	}

	cli.Successln(fmt.Sprintf("Linked %s. %d network(s) in total.", network, len(items)))

	return nil
}

func (a Actions) removeSocial(ctx context.Context) error {
	id, err := a.menu.CaptureText("Social network id", false)
	if err != nil {
		return err
	}

	if _, err := a.app.GetHandlers().Social.Delete(ctx, id); err != nil {
		return err
	}

	cli.Successln("Social network removed.")

	return nil
}

func (a Actions) phoneKind() (string, error) {
	kind, err := a.menu.CaptureText(fmt.Sprintf("Phone type (%s or %s)", phone.TypeTJ, phone.TypeInternational), false)
	if err != nil {
		return "", err
	}

	if kind != phone.TypeTJ && kind != phone.TypeInternational {
		return "", fmt.Errorf("unknown phone type %q", kind)
	}

	return kind, nil
}

func (a Actions) setPhone(ctx context.Context) error {
	kind, err := a.phoneKind()
	if err != nil {
		return err
	}

	number, err := a.menu.CaptureText("Number", false)
	if err != nil {
		return err
	}

	if _, err := a.app.GetHandlers().Phones.Set(ctx, kind, number); err != nil {
		return err
	}

	cli.Successln("Phone saved.")

	return nil
}

func (a Actions) removePhone(ctx context.Context) error {
	kind, err := a.phoneKind()
	if err != nil {
		return err
	}

	if _, err := a.app.GetHandlers().Phones.Remove(ctx, kind); err != nil {
		return err
	}

	cli.Successln("Phone removed.")

	return nil
}

func (a Actions) uploadGallery(ctx context.Context) error {
	paths, err := a.menu.CaptureFiles("Image files, comma separated")
	if err != nil {
		return err
	}

	count, rejected, err := a.app.GetHandlers().Gallery.AddImages(ctx, paths)
	printRejections(rejected)

	if err != nil {
		return err
	}

	cli.Successln(fmt.Sprintf("Uploaded %d image(s).", count))

	return nil
}

func (a Actions) removeGalleryImage(ctx context.Context) error {
	id, err := a.menu.CaptureNumber("Image id", false)
	if err != nil {
		return err
	}

	if err := a.app.GetHandlers().Gallery.RemoveImage(ctx, *id); err != nil {
		return err
	}

	cli.Successln("Image removed.")

	return nil
}

func (a Actions) clearGallery(ctx context.Context) error {
	if !a.menu.Confirm("Remove every gallery image?") {
		cli.Grayln("Nothing changed.")
		return nil
	}

	if err := a.app.GetHandlers().Gallery.RemoveAll(ctx); err != nil {
		return err
	}

	cli.Successln("Gallery cleared.")

	return nil
}

func (a Actions) uploadAvatar(ctx context.Context) error {
	path, err := a.menu.CaptureText("Image file", false)
	if err != nil {
		return err
	}

	url, err := a.app.GetHandlers().Avatar.Upload(ctx, path)
	if err != nil {
		return err
	}

	cli.Successln("Avatar updated: " + url)

	return nil
}

func (a Actions) leaveReview(ctx context.Context) error {
	input := payload.ReviewInput{}

	user, err := a.menu.CaptureNumber("Reviewed user id", false)
	if err != nil {
		return err
	}

	rating, err := a.menu.CaptureNumber("Rating (1-5)", false)
	if err != nil {
		return err
	}

	ticket, err := a.menu.CaptureNumber("Ticket id (optional)", true)
	if err != nil {
		return err
	}

	input.UserID = *user
	input.Rating = *rating

	if ticket != nil {
		input.TicketID = *ticket
	}

	if input.Description, err = a.menu.CaptureText("Description", false); err != nil {
		return err
	}

	photos, err := a.menu.CaptureText("Photo files, comma separated (optional)", true)
	if err != nil {
		return err
	}

	var paths []string
	if photos != "" {
		paths = portal.FilterNonEmpty(strings.Split(photos, ","))
	}

	review, rejected, err := a.app.GetHandlers().Reviews.Create(ctx, input, paths)
	printRejections(rejected)

	if err != nil {
		return err
	}

	cli.Successln(fmt.Sprintf("Review #%d posted.", review.ID))

	return nil
}

func (a Actions) recomputeRating(ctx context.Context) error {
	value, err := a.app.GetHandlers().Reviews.Recompute(ctx, a.app.SubjectID())
	if err != nil {
		return err
	}

	cli.Successln("Rating: " + cli.Stars(value))

	return nil
}

func (a Actions) showSnapshot(ctx context.Context) error {
	record, found, err := a.app.GetSnapshots().Latest(ctx, a.app.GetEnv().Api.Subject)
	if err != nil {
		return err
	}

	if !found {
		cli.Warningln("No snapshot has been stored yet.")
		return nil
	}

	panel.PrintSnapshot(record.Profile, record.CreatedAt)

	return nil
}

func (a Actions) clearSnapshots(ctx context.Context) error {
	if !a.menu.Confirm("Delete every stored snapshot?") {
		return nil
	}

	tables, err := a.app.ClearSnapshots(ctx)
	if err != nil {
		return err
	}

	cli.Successln(fmt.Sprintf("Cleared %s.", strings.Join(tables, ", ")))

	return nil
}

func printRejections(rejected []media.Rejection) {
	for _, r := range rejected {
		cli.Warningln(fmt.Sprintf("Skipped %s: %v", r.Name, r.Err))
	}
}
