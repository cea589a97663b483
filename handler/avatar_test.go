package handler

import (
	"context"
	"net/http"
	"testing"
)

func TestAvatarUploadRefreshesOnlyAvatar(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.backend.on(http.MethodPost, "/api/users/7/update-photo", func(w http.ResponseWriter, r *http.Request) {
		f.backend.mu.Lock()
		f.backend.user["image"] = "/uploads/ali-new.png"
		f.backend.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
	})

	h := MakeAvatarHandler(f.client, f.view, 0)

	avatar, err := h.Upload(context.Background(), writePNG(t, t.TempDir(), "me.png"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if avatar != f.backend.server.URL+"/uploads/ali-new.png" {
		t.Fatalf("unexpected avatar %q", avatar)
	}

	uploads := f.backend.callsTo(http.MethodPost, "/api/users/7/update-photo")
	if len(uploads) != 1 || !containsPart(uploads[0].Body, uploads[0].ContentType, "imageFile") {
		t.Fatalf("expected one upload, got %+v", uploads)
	}

	if got := f.store.Snapshot(); len(got.Education) != 2 || got.Name != "Ali Karimov" {
		t.Fatalf("other slices must be untouched: %+v", got)
	}
}

func TestAvatarUploadNeedsLoadedProfile(t *testing.T) {
	f := newFixture(t)

	if _, err := MakeAvatarHandler(f.client, f.view, 0).Upload(context.Background(), "me.png"); err != ErrProfileNotLoaded {
		t.Fatalf("expected ErrProfileNotLoaded, got %v", err)
	}
}
