package handler

import (
	"context"
	"net/http"
	"testing"
)

func TestAddSocialNetworkFormatsHandle(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakeSocialHandler(f.users, f.store)

	items, err := h.Add(context.Background(), "instagram", "https://instagram.com/ali.k")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"socialNetworks":[
		{"id":31,"network":"telegram","handle":"ali_k"},
		{"network":"instagram","handle":"ali.k"}
	]}`)

	if len(items) != 2 || items[1].URL != "https://instagram.com/ali.k" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestAddDuplicateSocialNetworkIsRefused(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakeSocialHandler(f.users, f.store)

	if _, err := h.Add(context.Background(), "telegram", "@someone_else"); err == nil {
		t.Fatalf("expected duplicate error")
	}

	if len(f.backend.callsTo(http.MethodPatch, "/api/users/7")) != 0 {
		t.Fatalf("duplicate must not be submitted")
	}
}

func TestUpdateSocialHandleStripsAt(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakeSocialHandler(f.users, f.store)

	items, err := h.Update(context.Background(), "31", "@my_handle")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	assertJSON(t, f.backend.lastBody(http.MethodPatch, "/api/users/7"), `{"socialNetworks":[{"id":31,"network":"telegram","handle":"my_handle"}]}`)

	if items[0].Handle != "my_handle" || items[0].URL != "https://t.me/my_handle" {
		t.Fatalf("unexpected item %+v", items[0])
	}
}

func TestDeleteLastSocialNetworkSubmitsEmptyList(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	h := MakeSocialHandler(f.users, f.store)

	items, err := h.Delete(context.Background(), "31")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if body := f.backend.lastBody(http.MethodPatch, "/api/users/7"); body != `{"socialNetworks":[]}` {
		t.Fatalf("expected explicit empty list, got %s", body)
	}

	if len(items) != 0 || len(f.store.Snapshot().SocialNetworks) != 0 {
		t.Fatalf("unexpected state %+v", f.store.Snapshot().SocialNetworks)
	}
}

func TestAvailableNetworksSkipPresentOnes(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.backend.reply(http.MethodGet, "/api/users/social-networks", http.StatusOK, `["telegram","instagram","myspace","whatsapp"]`)

	h := MakeSocialHandler(f.users, f.store)

	got, err := h.Available(context.Background())
	if err != nil {
		t.Fatalf("available: %v", err)
	}

	if len(got) != 2 || got[0] != "instagram" || got[1] != "whatsapp" {
		t.Fatalf("unexpected networks %v", got)
	}
}
