package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/oullin/profilesync/pkg/phone"
)

func TestSetPhoneWritesBothScalarFields(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakePhonesHandler(f.users, f.store)

	items, err := h.Set(context.Background(), phone.TypeInternational, "+1 415 555 2671")
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"phone1":"+992912345678","phone2":"+14155552671"}`)

	if len(items) != 2 || f.store.Snapshot().Phones[1].Type != phone.TypeInternational {
		t.Fatalf("unexpected phones %+v", items)
	}
}

func TestSetPhoneReplacesExistingNumber(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakePhonesHandler(f.users, f.store)

	if _, err := h.Set(context.Background(), phone.TypeTJ, "+992900000001"); err != nil {
		t.Fatalf("set: %v", err)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"phone1":"+992900000001","phone2":null}`)
}

func TestInvalidPhoneIsNotSubmitted(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakePhonesHandler(f.users, f.store)

	for _, number := range []string{"+99291234567", "4155552671"} {
		kind := phone.TypeTJ
		if number == "4155552671" {
			kind = phone.TypeInternational
		}

		if _, err := h.Set(context.Background(), kind, number); err == nil {
			t.Fatalf("expected %s to be rejected", number)
		}
	}

	if len(f.backend.callsTo(http.MethodPatch, "/api/users/7")) != 0 {
		t.Fatalf("invalid numbers must not be submitted")
	}
}

func TestRemovePhoneClearsField(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakePhonesHandler(f.users, f.store)

	items, err := h.Remove(context.Background(), phone.TypeTJ)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"phone1":null,"phone2":null}`)

	if len(items) != 0 {
		t.Fatalf("unexpected phones %+v", items)
	}
}
