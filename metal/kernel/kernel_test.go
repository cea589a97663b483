package kernel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	baseHttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oullin/profilesync/database"
	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/pkg/portal"
)

func validEnvVars(t *testing.T) {
	t.Helper()

	dir := t.TempDir()

	t.Setenv("ENV_APP_NAME", "profilesync")
	t.Setenv("ENV_APP_ENV_TYPE", "local")
	t.Setenv("ENV_API_BASE_URL", "https://api.example.com")
	t.Setenv("ENV_API_LOCALE", "tg")
	t.Setenv("ENV_API_EMAIL", "ali@example.com")
	t.Setenv("ENV_API_PASSWORD", "secret-password")
	t.Setenv("ENV_API_TIMEOUT_SECONDS", "15")
	t.Setenv("ENV_API_SUBJECT", "self")
	t.Setenv("ENV_DB_DRIVER", "sqlite")
	t.Setenv("ENV_DB_DSN", filepath.Join(dir, "profilesync.db"))
	t.Setenv("ENV_APP_LOG_LEVEL", "debug")
	t.Setenv("ENV_APP_LOGS_DIR", filepath.Join(dir, "logs_%s.log"))
	t.Setenv("ENV_APP_LOGS_DATE_FORMAT", "2006_01_02")
	t.Setenv("ENV_SENTRY_DSN", "")
	t.Setenv("ENV_GALLERY_MAX_BYTES", "")
	t.Setenv("ENV_GALLERY_PLACEHOLDER_URL", "https://cdn.example.com/placeholder.png")
	t.Setenv("ENV_AGENT_HTTP_ADDR", "")
	t.Setenv("ENV_RATING_SCHEDULE", "")
	t.Setenv("ENV_PROFILE_REFRESH_SCHEDULE", "15 * * * *")
	t.Setenv("ENV_AGENT_ALLOWED_ORIGINS", "http://localhost:3000, ")
	t.Setenv("ENV_AGENT_USERNAME", "")
	t.Setenv("ENV_AGENT_PASSWORD", "")
	t.Setenv("ENV_TRACING_ENABLED", "false")

	previous := env.SecretsDir
	env.SecretsDir = filepath.Join(dir, "secrets")
	t.Cleanup(func() { env.SecretsDir = previous })
}

func TestMakeEnvAppliesDefaults(t *testing.T) {
	validEnvVars(t)

	e := MakeEnv(portal.GetDefaultValidator())

	if e.Api.Timeout.Seconds() != 15 || !e.Api.IsSelf() {
		t.Fatalf("unexpected api section %+v", e.Api)
	}

	if e.Agent.HttpAddr != defaultAgentAddr || e.Agent.RatingSchedule != defaultRatingSchedule || e.Agent.ProfileRefreshSchedule != "15 * * * *" {
		t.Fatalf("unexpected agent section %+v", e.Agent)
	}

	if len(e.Agent.AllowedOrigins) != 1 || e.Gallery.MaxBytes != env.DefaultGalleryMaxBytes {
		t.Fatalf("unexpected origins or gallery %+v %+v", e.Agent.AllowedOrigins, e.Gallery)
	}
}

func TestMakeEnvReadsSecretFiles(t *testing.T) {
	validEnvVars(t)
	t.Setenv("ENV_API_PASSWORD", "")

	if err := os.MkdirAll(env.SecretsDir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(env.SecretsDir, "api_password"), []byte("from-secret\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	if got := MakeEnv(portal.GetDefaultValidator()).Api.Password; got != "from-secret" {
		t.Fatalf("expected secret file value, got %q", got)
	}
}

func TestMakeEnvPanicsOnInvalidSections(t *testing.T) {
	cases := map[string]string{
		"ENV_API_LOCALE":          "not a locale!",
		"ENV_API_SUBJECT":         "someone",
		"ENV_RATING_SCHEDULE":     "every now and then",
		"ENV_DB_DRIVER":           "mysql",
		"ENV_API_TIMEOUT_SECONDS": "soon",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			validEnvVars(t)
			t.Setenv(key, value)

			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for %s=%q", key, value)
				}
			}()

			MakeEnv(portal.GetDefaultValidator())
		})
	}
}

func TestIgniteRequiresEnvFile(t *testing.T) {
	if _, err := Ignite(filepath.Join(t.TempDir(), "missing.env"), portal.GetDefaultValidator()); err == nil {
		t.Fatalf("expected error for a missing env file")
	}
}

func fakeToken(userID int) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, _ := json.Marshal(map[string]any{"id": userID, "exp": 4102444800})

	return header + "." + enc.EncodeToString(claims) + ".c2ln"
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := baseHttp.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w baseHttp.ResponseWriter, r *baseHttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"token":"`+fakeToken(7)+`"}`)
	})

	mux.HandleFunc("POST /api/logout", func(w baseHttp.ResponseWriter, r *baseHttp.Request) {
		w.WriteHeader(baseHttp.StatusNoContent)
	})

	mux.HandleFunc("GET /api/users/me", func(w baseHttp.ResponseWriter, r *baseHttp.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(baseHttp.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":7,"name":"Ali","surname":"Karimov","rating":4.5,"phone1":"+992912345678"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	validEnvVars(t)
	t.Setenv("ENV_API_BASE_URL", fakeBackend(t).URL)

	e := MakeEnv(portal.GetDefaultValidator())

	db, err := database.MakeConnection(e)
	if err != nil {
		t.Fatalf("db: %v", err)
	}

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	app, err := MakeApp(e, portal.GetDefaultValidator(), AppOptions{Logs: MakeLogs(e), DB: db})
	if err != nil {
		t.Fatalf("make app: %v", err)
	}

	t.Cleanup(app.Close)

	return app
}

func TestAppLoadsProfileAndStoresSnapshot(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	if err := app.RefreshProfile(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if app.SubjectID() != 7 || app.GetStore().Snapshot().Name != "Ali Karimov" {
		t.Fatalf("unexpected profile %+v", app.GetStore().Snapshot())
	}

	record, found, err := app.GetSnapshots().Latest(ctx, "self")
	if err != nil || !found || record.Profile.ID != 7 {
		t.Fatalf("snapshot not stored: %+v %v %v", record, found, err)
	}
}

func TestAppClearSnapshots(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	if err := app.RefreshProfile(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	tables, err := app.ClearSnapshots(ctx)
	if err != nil || len(tables) != 1 || tables[0] != database.SnapshotsTable {
		t.Fatalf("unexpected clear result %v %v", tables, err)
	}

	if _, found, err := app.GetSnapshots().Latest(ctx, "self"); err != nil || found {
		t.Fatalf("snapshots should be gone: %v %v", found, err)
	}
}

func TestAppServesAgentRoutes(t *testing.T) {
	app := newTestApp(t)

	if err := app.LoadProfile(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	var served baseHttp.Handler

	previous := runServer
	runServer = func(ctx context.Context, addr string, server *baseHttp.Server) error {
		served = server.Handler
		return nil
	}
	t.Cleanup(func() { runServer = previous })

	if err := app.Serve(context.Background()); err != nil {
		t.Fatalf("serve: %v", err)
	}

	rec := httptest.NewRecorder()
	served.ServeHTTP(rec, httptest.NewRequest(baseHttp.MethodGet, "/profile", nil))

	if rec.Code != baseHttp.StatusOK || !strings.Contains(rec.Body.String(), "Ali Karimov") {
		t.Fatalf("unexpected profile response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	served.ServeHTTP(rec, httptest.NewRequest(baseHttp.MethodGet, "/jobs", nil))

	if !strings.Contains(rec.Body.String(), "rating-recompute") || !strings.Contains(rec.Body.String(), "profile-refresh") {
		t.Fatalf("jobs missing: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	served.ServeHTTP(rec, httptest.NewRequest(baseHttp.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("metrics missing go collector output")
	}
}
