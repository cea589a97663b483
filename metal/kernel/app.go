package kernel

import (
	"context"
	"errors"
	"fmt"
	baseHttp "net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/oullin/profilesync/database"
	"github.com/oullin/profilesync/database/repository"
	"github.com/oullin/profilesync/handler"
	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/metal/router"
	"github.com/oullin/profilesync/pkg/auth"
	"github.com/oullin/profilesync/pkg/llogs"
	"github.com/oullin/profilesync/pkg/middleware"
	"github.com/oullin/profilesync/pkg/portal"
	"github.com/oullin/profilesync/pkg/scheduler"
	"github.com/oullin/profilesync/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SnapshotHistory is how many snapshots per subject survive a refresh.
const SnapshotHistory = 20

// Handlers groups every profile operation bound to one session and store.
type Handlers struct {
	Users     *handler.UsersAPI
	Geo       *handler.Geo
	Profile   *handler.ProfileView
	Addresses *handler.AddressesHandler
	Education *handler.EducationHandler
	Social    *handler.SocialHandler
	Phones    *handler.PhonesHandler
	Gallery   *handler.Gallery
	Reviews   *handler.Reviews
	Avatar    *handler.AvatarHandler
}

type App struct {
	env       *env.Environment
	validator *portal.Validator
	logs      llogs.Driver
	sentry    *sentryhttp.Handler
	tracer    *portal.TracerProvider
	db        *database.Connection
	snapshots repository.Snapshots
	client    *portal.Client
	session   *auth.Session
	store     *store.Store
	registry  *prometheus.Registry
	handlers  Handlers
	jobs      *scheduler.Group
	router    *router.Router
}

type AppOptions struct {
	Logs   llogs.Driver
	DB     *database.Connection
	Sentry *sentryhttp.Handler
}

// MakeApp wires the whole synchroniser. Dependencies missing from opts are
// built from the environment.
func MakeApp(e *env.Environment, validator *portal.Validator, opts AppOptions) (*App, error) {
	app := App{
		env:       e,
		validator: validator,
		logs:      opts.Logs,
		db:        opts.DB,
		sentry:    opts.Sentry,
		store:     store.New(),
		registry:  prometheus.NewRegistry(),
	}

	if app.logs == nil {
		app.logs = MakeLogs(e)
	}

	if app.db == nil {
		app.db = MakeDbConnection(e)
	}

	if app.sentry == nil {
		app.sentry = MakeSentry(e)
	}

	tracer, err := portal.NewTracerProvider(e)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping error > could not start tracing: %w", err)
	}

	app.tracer = tracer
	app.snapshots = repository.Snapshots{DB: app.db}

	if err := app.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("bootstrapping error > could not register go metrics: %w", err)
	}

	if err := app.makeClient(); err != nil {
		return nil, err
	}

	app.makeHandlers()

	if err := app.makeJobs(); err != nil {
		return nil, err
	}

	app.SetRouter(router.Router{
		Mux: baseHttp.NewServeMux(),
		Pipeline: middleware.Pipeline{
			Guard: middleware.MakeAgentGuard(e.Agent),
		},
		Agent: handler.MakeAgentHandler(app.handlers.Profile, app.jobs, app.registry),
	})

	return &app, nil
}

func (a *App) makeClient() error {
	client, err := portal.NewClient(portal.ClientConfig{
		BaseURL:   a.env.Api.BaseURL,
		UserAgent: a.env.App.Name,
		Timeout:   a.env.Api.Timeout,
	})

	if err != nil {
		return fmt.Errorf("bootstrapping error > could not create the portal client: %w", err)
	}

	metrics := portal.NewMetrics()
	if err := metrics.Register(a.registry); err != nil {
		return fmt.Errorf("bootstrapping error > could not register client metrics: %w", err)
	}

	locale := a.env.Api.Locale

	client.Metrics = metrics
	client.OnHeaders = func(req *baseHttp.Request) {
		req.Header.Set("Accept-Language", locale)
	}

	a.session = auth.NewSession(client, auth.Credentials{
		Email:    a.env.Api.Email,
		Password: a.env.Api.Password,
	})

	client.Tokens = a.session
	a.client = client

	return nil
}

func (a *App) makeHandlers() {
	users := handler.MakeUsersAPI(a.client)
	geo := handler.MakeGeo(a.client, a.env.Api.Locale, handler.DefaultCatalogTTL)

	gallery := handler.MakeGallery(handler.GalleryConfig{
		Client:         a.client,
		Store:          a.store,
		MaxBytes:       a.env.Gallery.MaxBytes,
		PlaceholderURL: a.env.Gallery.PlaceholderURL,
		ProbeTTL:       handler.DefaultProbeTTL,
		Owner:          a.sessionOwner,
	})

	reviews := handler.MakeReviews(handler.ReviewsConfig{
		Client:    a.client,
		Users:     users,
		Store:     a.store,
		Validator: a.validator,
		MaxBytes:  a.env.Gallery.MaxBytes,
	})

	view := handler.MakeProfileView(handler.ProfileViewConfig{
		Users:     users,
		Geo:       geo,
		Store:     a.store,
		Gallery:   gallery,
		Reviews:   reviews,
		Resolve:   a.client.Resolve,
		Snapshots: a.snapshots,
	})

	a.handlers = Handlers{
		Users:     users,
		Geo:       geo,
		Profile:   view,
		Addresses: handler.MakeAddressesHandler(users, geo, a.store, a.validator),
		Education: handler.MakeEducationHandler(users, geo, a.store, a.validator),
		Social:    handler.MakeSocialHandler(users, a.store),
		Phones:    handler.MakePhonesHandler(users, a.store),
		Gallery:   gallery,
		Reviews:   reviews,
		Avatar:    handler.MakeAvatarHandler(a.client, view, a.env.Gallery.MaxBytes),
	}
}

func (a *App) makeJobs() error {
	timeout := scheduler.WithJobTimeout(5 * time.Minute)

	rating, err := scheduler.New("rating-recompute", a.env.Agent.RatingSchedule, a.recomputeRating, timeout)
	if err != nil {
		return fmt.Errorf("bootstrapping error > could not schedule rating recompute: %w", err)
	}

	refresh, err := scheduler.New("profile-refresh", a.env.Agent.ProfileRefreshSchedule, a.RefreshProfile, timeout)
	if err != nil {
		return fmt.Errorf("bootstrapping error > could not schedule profile refresh: %w", err)
	}

	a.jobs = scheduler.NewGroup(rating, refresh)

	return nil
}

// LoadProfile fetches the configured subject into the store.
func (a *App) LoadProfile(ctx context.Context) error {
	if a.handlers.Profile.Load(ctx, a.env.Api.Subject).IsEmpty() {
		return fmt.Errorf("could not load profile of %s", a.env.Api.Subject)
	}

	return nil
}

// RefreshProfile reloads the profile and trims the snapshot history.
func (a *App) RefreshProfile(ctx context.Context) error {
	if err := a.LoadProfile(ctx); err != nil {
		return err
	}

	if _, err := a.snapshots.Prune(ctx, a.env.Api.Subject, SnapshotHistory); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return nil
}

// ClearSnapshots wipes the stored snapshot history outside production.
func (a *App) ClearSnapshots(ctx context.Context) ([]string, error) {
	tables, err := database.NewTruncate(a.db, a.env).Execute(ctx)
	if err != nil {
		return tables, fmt.Errorf("clear snapshots: %w", err)
	}

	return tables, nil
}

func (a *App) recomputeRating(ctx context.Context) error {
	id := a.SubjectID()
	if id == 0 {
		return handler.ErrProfileNotLoaded
	}

	_, err := a.handlers.Reviews.Recompute(ctx, id)

	return err
}

// SubjectID resolves the user being synchronised: the loaded profile, the
// configured id or the signed-in account, in that order.
func (a *App) SubjectID() int {
	if id := a.store.Snapshot().ID; id > 0 {
		return id
	}

	if id := a.env.Api.SubjectID(); id > 0 {
		return id
	}

	return a.sessionOwner()
}

func (a *App) sessionOwner() int {
	claims, err := a.session.Claims()
	if err != nil {
		return 0
	}

	return claims.OwnerID()
}

// Serve runs the scheduled jobs and the agent HTTP server until ctx ends.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.router == nil {
		return errors.New("bootstrapping error > invalid setup")
	}

	if a.db != nil {
		if err := a.db.Ping(); err != nil {
			return fmt.Errorf("snapshot store unreachable: %w", err)
		}
	}

	a.router.Boot()

	if err := a.jobs.Start(ctx); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}

	defer a.jobs.Stop()

	var wrap func(baseHttp.Handler) baseHttp.Handler
	if a.sentry != nil {
		wrap = a.sentry.Handle
	}

	server := &baseHttp.Server{
		Addr:              a.env.Agent.HttpAddr,
		Handler:           endpointHandler(a.router.Mux, a.env, wrap),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return runServer(ctx, a.env.Agent.HttpAddr, server)
}
