package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/cache"
	"github.com/oullin/profilesync/pkg/endpoint"
	"github.com/oullin/profilesync/pkg/iri"
	"github.com/oullin/profilesync/pkg/media"
	"github.com/oullin/profilesync/pkg/portal"
	"github.com/oullin/profilesync/pkg/reconcile"
	"github.com/oullin/profilesync/pkg/store"
)

const (
	GalleriesPath     = "/api/galleries"
	galleryImageField = "imageFile[]"
	galleryScanPages  = 50
	DefaultProbeTTL   = 10 * time.Minute
)

var (
	ErrNoGallery     = errors.New("gallery not found")
	ErrNoValidImages = errors.New("no valid image to upload")
	ErrUnknownOwner  = errors.New("gallery owner is unknown")
)

type GalleryConfig struct {
	Client         *portal.Client
	Store          *store.Store
	MaxBytes       int64
	PlaceholderURL string
	ProbeTTL       time.Duration
	// Owner resolves the signed-in user id when the store holds no profile.
	Owner func() int
}

// Gallery manages the single gallery a user owns.
type Gallery struct {
	client      *portal.Client
	store       *store.Store
	maxBytes    int64
	placeholder string
	probeTTL    time.Duration
	probes      *cache.TTLCache[bool]
	owner       func() int
}

func MakeGallery(cfg GalleryConfig) *Gallery {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = media.DefaultMaxBytes
	}

	ttl := cfg.ProbeTTL
	if ttl <= 0 {
		ttl = DefaultProbeTTL
	}

	return &Gallery{
		client:      cfg.Client,
		store:       cfg.Store,
		maxBytes:    maxBytes,
		placeholder: cfg.PlaceholderURL,
		probeTTL:    ttl,
		probes:      cache.NewTTLCache[bool](),
		owner:       cfg.Owner,
	}
}

func GalleryPath(id int) string {
	return fmt.Sprintf("%s/%d", GalleriesPath, id)
}

// Find looks the owner's gallery up without creating it. The "mine" endpoint
// is tried first, then the owner filter and finally a scan of every gallery
// matched by its embedded owner reference.
func (g *Gallery) Find(ctx context.Context, ownerID int) (payload.GalleryResponse, bool, error) {
	strategies := []struct {
		name string
		find func(context.Context, int) (payload.GalleryResponse, bool, error)
	}{
		{"mine", g.findMine},
		{"filtered", g.findFiltered},
		{"scan", g.findByScan},
	}

	var failures []error

	for _, strategy := range strategies {
		gallery, found, err := strategy.find(ctx, ownerID)
		if err != nil {
			if errors.Is(err, portal.ErrSessionExpired) {
				return payload.GalleryResponse{}, false, err
			}

			slog.Warn("gallery lookup failed", "strategy", strategy.name, "owner", ownerID, "error", err)
			failures = append(failures, err)

			continue
		}

		if found {
			slog.Debug("gallery found", "strategy", strategy.name, "owner", ownerID, "gallery", gallery.ID)

			return gallery, true, nil
		}
	}

	if len(failures) == len(strategies) {
		return payload.GalleryResponse{}, false, fmt.Errorf("find gallery of user %d: %w", ownerID, errors.Join(failures...))
	}

	return payload.GalleryResponse{}, false, nil
}

// GetOrCreate returns the owner's gallery, creating an empty one when none
// exists. A conflict on create means a concurrent creator won; the lookup is
// re-run instead of failing.
func (g *Gallery) GetOrCreate(ctx context.Context, ownerID int) (payload.GalleryResponse, error) {
	gallery, found, err := g.Find(ctx, ownerID)
	if err != nil {
		return payload.GalleryResponse{}, err
	}

	if found {
		return gallery, nil
	}

	body := map[string]any{
		"user":   iri.Make("users", ownerID),
		"images": []payload.GalleryImage{},
	}

	var created payload.GalleryResponse

	err = g.client.PostJSON(ctx, GalleriesPath, body, &created)
	if err == nil {
		slog.Info("gallery created", "owner", ownerID, "gallery", created.ID)

		return created, nil
	}

	if !endpoint.IsConflict(err) {
		return payload.GalleryResponse{}, fmt.Errorf("create gallery of user %d: %w", ownerID, err)
	}

	slog.Info("gallery created concurrently, looking it up again", "owner", ownerID)

	gallery, found, err = g.Find(ctx, ownerID)
	if err != nil {
		return payload.GalleryResponse{}, err
	}

	if !found {
		return payload.GalleryResponse{}, fmt.Errorf("create gallery of user %d: %w", ownerID, ErrNoGallery)
	}

	return gallery, nil
}

// Images returns the gallery id and its verified items. A missing gallery
// is an empty result.
func (g *Gallery) Images(ctx context.Context, ownerID int) (int, []payload.WorkExampleData, error) {
	gallery, found, err := g.Find(ctx, ownerID)
	if err != nil {
		return 0, nil, err
	}

	if !found {
		return 0, nil, nil
	}

	items := make([]payload.WorkExampleData, 0, len(gallery.Images))
	for _, image := range gallery.Images {
		items = append(items, payload.WorkExampleData{
			ID:   image.ID,
			Path: image.Image,
			URL:  g.verify(ctx, image.Image),
		})
	}

	return gallery.ID, items, nil
}

// AddImages screens every path and uploads the valid files in one request.
// Invalid files are reported and skipped.
func (g *Gallery) AddImages(ctx context.Context, paths []string) (int, []media.Rejection, error) {
	files, rejected := media.Screen(paths, g.maxBytes)
	for _, rejection := range rejected {
		slog.Warn("image rejected", "file", rejection.Name, "error", rejection.Err)
	}

	if len(files) == 0 {
		return 0, rejected, ErrNoValidImages
	}

	ownerID, err := g.ownerID()
	if err != nil {
		return 0, rejected, err
	}

	gallery, err := g.GetOrCreate(ctx, ownerID)
	if err != nil {
		return 0, rejected, err
	}

	parts := make([]portal.Part, 0, len(files))
	for _, file := range files {
		parts = append(parts, portal.Part{
			Field:       galleryImageField,
			FileName:    file.Name,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
	}

	if err := g.client.PostMultipart(ctx, GalleryPath(gallery.ID)+"/upload-photo", parts, nil); err != nil {
		return 0, rejected, fmt.Errorf("upload to gallery %d: %w", gallery.ID, err)
	}

	slog.Info("gallery images uploaded", "gallery", gallery.ID, "count", len(files), "rejected", len(rejected))

	if err := g.refresh(ctx, ownerID); err != nil {
		return len(files), rejected, err
	}

	return len(files), rejected, nil
}

func (g *Gallery) RemoveImage(ctx context.Context, imageID int) error {
	return g.rewrite(ctx, func(images []payload.GalleryImage) ([]payload.GalleryImage, error) {
		kept := make([]payload.GalleryImage, 0, len(images))

		for _, image := range images {
			if image.ID != imageID {
				kept = append(kept, image)
			}
		}

		if len(kept) == len(images) {
			return nil, fmt.Errorf("gallery image %d: %w", imageID, reconcile.ErrMemberNotFound)
		}

		return kept, nil
	})
}

func (g *Gallery) RemoveAll(ctx context.Context) error {
	return g.rewrite(ctx, func([]payload.GalleryImage) ([]payload.GalleryImage, error) {
		return []payload.GalleryImage{}, nil
	})
}

// rewrite re-submits the whole image list; there is no per-image delete.
func (g *Gallery) rewrite(ctx context.Context, change func([]payload.GalleryImage) ([]payload.GalleryImage, error)) error {
	ownerID, err := g.ownerID()
	if err != nil {
		return err
	}

	gallery, found, err := g.Find(ctx, ownerID)
	if err != nil {
		return err
	}

	if !found {
		return ErrNoGallery
	}

	images, err := change(gallery.Images)
	if err != nil {
		return err
	}

	body := payload.GalleryPayload{Images: images}
	if err := g.client.PatchJSON(ctx, GalleryPath(gallery.ID), body, nil); err != nil {
		return fmt.Errorf("patch gallery %d: %w", gallery.ID, err)
	}

	slog.Info("gallery updated", "gallery", gallery.ID, "images", len(images))

	return g.refresh(ctx, ownerID)
}

func (g *Gallery) refresh(ctx context.Context, ownerID int) error {
	id, items, err := g.Images(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("refresh gallery: %w", err)
	}

	if g.store != nil {
		g.store.Dispatch(store.GalleryUpdated{GalleryID: id, Items: items})
	}

	return nil
}

// verify probes an image URL once per TTL and falls back to the placeholder
// when it is unreachable.
func (g *Gallery) verify(ctx context.Context, path string) string {
	target := g.client.Resolve(path)
	if target == "" {
		return g.placeholder
	}

	ok, cached := g.probes.Get(target)
	if !cached {
		reachable, err := g.client.Probe(ctx, target)
		if err != nil {
			slog.Debug("image probe failed", "url", target, "error", err)
		}

		ok = reachable
		g.probes.Set(target, ok, g.probeTTL)
	}

	if !ok {
		return g.placeholder
	}

	return target
}

func (g *Gallery) ownerID() (int, error) {
	if g.store != nil {
		if id := g.store.Snapshot().ID; id > 0 {
			return id, nil
		}
	}

	if g.owner != nil {
		if id := g.owner(); id > 0 {
			return id, nil
		}
	}

	return 0, ErrUnknownOwner
}

func (g *Gallery) findMine(ctx context.Context, ownerID int) (payload.GalleryResponse, bool, error) {
	var gallery payload.GalleryResponse

	if err := g.client.GetJSON(ctx, GalleriesPath+"/me", &gallery); err != nil {
		if endpoint.IsNotFound(err) {
			return payload.GalleryResponse{}, false, nil
		}

		return payload.GalleryResponse{}, false, err
	}

	if gallery.ID <= 0 || !ownedBy(gallery, ownerID, true) {
		return payload.GalleryResponse{}, false, nil
	}

	return gallery, true, nil
}

func (g *Gallery) findFiltered(ctx context.Context, ownerID int) (payload.GalleryResponse, bool, error) {
	var page payload.Collection[payload.GalleryResponse]

	if err := g.client.GetJSON(ctx, GalleriesPath, &page, portal.WithQuery("user", strconv.Itoa(ownerID))); err != nil {
		if endpoint.IsNotFound(err) {
			return payload.GalleryResponse{}, false, nil
		}

		return payload.GalleryResponse{}, false, err
	}

	// The filter is not honoured reliably, so the owner is checked again.
	for _, gallery := range page.Items {
		if ownedBy(gallery, ownerID, false) {
			return gallery, true, nil
		}
	}

	return payload.GalleryResponse{}, false, nil
}

func (g *Gallery) findByScan(ctx context.Context, ownerID int) (payload.GalleryResponse, bool, error) {
	seen := 0

	for number := 1; number <= galleryScanPages; number++ {
		var page payload.Collection[payload.GalleryResponse]

		err := g.client.GetJSON(ctx, GalleriesPath, &page, portal.WithQuery("page", strconv.Itoa(number)))
		if err != nil {
			if endpoint.IsNotFound(err) {
				return payload.GalleryResponse{}, false, nil
			}

			return payload.GalleryResponse{}, false, err
		}

		for _, gallery := range page.Items {
			if ownedBy(gallery, ownerID, false) {
				return gallery, true, nil
			}
		}

		seen += len(page.Items)
		if len(page.Items) == 0 || seen >= page.Total {
			break
		}
	}

	return payload.GalleryResponse{}, false, nil
}

// ownedBy matches the embedded owner. A missing owner is accepted only when
// the endpoint is already scoped to the caller.
func ownedBy(gallery payload.GalleryResponse, ownerID int, scoped bool) bool {
	if gallery.User.IsZero() {
		return scoped
	}

	return gallery.User.ID == ownerID
}
