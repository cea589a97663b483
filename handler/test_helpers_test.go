package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/portal"
	"github.com/oullin/profilesync/pkg/store"
)

const userFixture = `{
	"id": 7,
	"email": "ali@example.com",
	"name": "Ali",
	"surname": "Karimov",
	"rating": 4.0,
	"image": "/uploads/ali.png",
	"occupation": [{"id": 3, "title": "Plumber"}],
	"addresses": [
		{"id": 11, "province": {"id": 1, "title": "Sughd"}, "city": {"id": 2, "title": "Khujand"}, "districts": []}
	],
	"educations": [
		{"id": 21, "institution": "TTU", "occupation": {"id": 3, "title": "Plumber"}, "dateStart": 2010, "dateEnd": 2014, "currentlyStudying": false},
		{"id": 22, "institution": "RTSU", "occupation": "/api/occupations/4", "dateStart": "2019-09-01T00:00:00+00:00", "dateEnd": null, "currentlyStudying": true}
	],
	"socialNetworks": [{"id": 31, "network": "telegram", "handle": "ali_k"}],
	"phone1": "+992 91 234 5678",
	"phone2": "",
	"remoteWork": true,
	"tickets": [{"id": 41, "title": "Pipe repair", "budget": 100, "active": true}]
}`

const occupationsFixture = `{"hydra:member": [{"id": 3, "title": "Plumber"}, {"id": 4, "title": "Electrician"}], "hydra:totalItems": 2}`

type call struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        []byte
}

// backend fakes the user aggregate with merge-patch semantics. Every other
// route answers 404 unless registered with on.
type backend struct {
	t      *testing.T
	mu     sync.Mutex
	user   map[string]any
	nextID int
	calls  []call
	routes map[string]http.HandlerFunc
	server *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{t: t, nextID: 100, routes: map[string]http.HandlerFunc{}}

	if err := json.Unmarshal([]byte(userFixture), &b.user); err != nil {
		t.Fatalf("user fixture: %v", err)
	}

	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)

	return b
}

func (b *backend) on(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.routes[method+" "+path] = h
}

func (b *backend) reply(method, path string, status int, body string) {
	b.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", portal.ContentTypeLDJSON)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) client() *portal.Client {
	b.t.Helper()

	c, err := portal.NewClient(portal.ClientConfig{BaseURL: b.server.URL})
	if err != nil {
		b.t.Fatalf("client: %v", err)
	}

	return c
}

func (b *backend) callsTo(method, path string) []call {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []call
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}

	return out
}

func (b *backend) lastBody(method, path string) string {
	b.t.Helper()

	calls := b.callsTo(method, path)
	if len(calls) == 0 {
		b.t.Fatalf("no %s %s call recorded", method, path)
	}

	return string(calls[len(calls)-1].Body)
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.calls = append(b.calls, call{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	route := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if route != nil {
		route(w, r)
		return
	}

	switch {
	case r.Method == http.MethodGet && (r.URL.Path == "/api/users/7" || r.URL.Path == "/api/users/me"):
		b.writeUser(w)
	case r.Method == http.MethodPatch && r.URL.Path == "/api/users/7":
		b.patchUser(w, body)
	default:
		w.Header().Set("Content-Type", portal.ContentTypeLDJSON)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
	}
}

func (b *backend) writeUser(w http.ResponseWriter) {
	b.mu.Lock()
	data, err := json.Marshal(b.user)
	b.mu.Unlock()

	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", portal.ContentTypeLDJSON)
	_, _ = w.Write(data)
}

// patchUser merges the top level keys and assigns ids to new collection
// members the way the server does.
func (b *backend) patchUser(w http.ResponseWriter, body []byte) {
	var patch map[string]any
	if err := json.Unmarshal(body, &patch); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	for key, value := range patch {
		if value == nil {
			delete(b.user, key)
			continue
		}

		if members, ok := value.([]any); ok {
			for _, member := range members {
				if object, ok := member.(map[string]any); ok && object["id"] == nil {
					object["id"] = float64(b.nextID)
					b.nextID++
				}
			}
		}

		b.user[key] = value
	}
	b.mu.Unlock()

	b.writeUser(w)
}

type fixture struct {
	backend   *backend
	client    *portal.Client
	store     *store.Store
	users     *UsersAPI
	geo       *Geo
	view      *ProfileView
	snapshots *snapshotRecorder
}

// newFixture wires the handlers to a fake backend serving user 7.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := newBackend(t)
	b.reply(http.MethodGet, "/api/occupations", http.StatusOK, occupationsFixture)

	f := &fixture{backend: b, client: b.client(), store: store.New(), snapshots: &snapshotRecorder{}}
	f.users = MakeUsersAPI(f.client)
	f.geo = MakeGeo(f.client, "tg", DefaultCatalogTTL)
	f.view = MakeProfileView(ProfileViewConfig{
		Users:     f.users,
		Geo:       f.geo,
		Store:     f.store,
		Resolve:   f.client.Resolve,
		Snapshots: f.snapshots,
	})

	return f
}

func (f *fixture) load(t *testing.T) payload.ProfileData {
	t.Helper()

	profile := f.view.Load(context.Background(), SelfSubject)
	if profile.IsEmpty() {
		t.Fatalf("profile did not load")
	}

	return profile
}

type snapshotRecorder struct {
	mu       sync.Mutex
	subjects []string
	last     payload.ProfileData
}

func (s *snapshotRecorder) Save(ctx context.Context, subject string, profile payload.ProfileData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subjects = append(s.subjects, subject)
	s.last = profile

	return nil
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write png: %v", err)
	}

	return path
}

func assertJSON(t *testing.T, got, want string) {
	t.Helper()

	var g, w any
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}

	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode %q: %v", want, err)
	}

	gotNorm, _ := json.Marshal(g)
	wantNorm, _ := json.Marshal(w)

	if string(gotNorm) != string(wantNorm) {
		t.Fatalf("unexpected json\n got: %s\nwant: %s", gotNorm, wantNorm)
	}
}

func containsPart(body []byte, contentType, field string) bool {
	return strings.Contains(contentType, "multipart/form-data") && bytes.Contains(body, []byte(`name="`+field+`"`))
}
