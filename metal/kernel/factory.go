package kernel

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/oullin/profilesync/database"
	"github.com/oullin/profilesync/metal/env"
	"github.com/oullin/profilesync/pkg/llogs"
	"github.com/oullin/profilesync/pkg/portal"
)

const (
	defaultAgentAddr       = "127.0.0.1:8081"
	defaultRatingSchedule  = "*/30 * * * *"
	defaultRefreshSchedule = "0 * * * *"
)

// MakeSentry initialises the global Sentry client. It returns nil when no
// DSN is configured.
func MakeSentry(env *env.Environment) *sentryhttp.Handler {
	if !env.Sentry.Enabled() {
		return nil
	}

	cOptions := sentry.ClientOptions{
		Dsn:         env.Sentry.DSN,
		Debug:       env.App.IsLocal(),
		Environment: env.App.Type,
	}

	if err := sentry.Init(cOptions); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}

	return sentryhttp.New(sentryhttp.Options{Repanic: true})
}

func MakeDbConnection(env *env.Environment) *database.Connection {
	dbConn, err := database.MakeConnection(env)

	if err != nil {
		panic("Sql: error connecting to the database: " + err.Error())
	}

	if err := dbConn.Migrate(); err != nil {
		panic("Sql: " + err.Error())
	}

	return dbConn
}

func MakeLogs(env *env.Environment) llogs.Driver {
	lDriver, err := llogs.MakeFilesLogs(env)

	if err != nil {
		panic("logs: error opening logs file: " + err.Error())
	}

	return lDriver
}

func MakeEnv(validate *portal.Validator) *env.Environment {
	errorSuffix := "Environment: "

	timeout := 0
	if raw := env.GetEnvVar("ENV_API_TIMEOUT_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			panic(errorSuffix + "invalid value for ENV_API_TIMEOUT_SECONDS: " + err.Error())
		}

		timeout = parsed
	}

	maxBytes := env.DefaultGalleryMaxBytes
	if raw := env.GetEnvVar("ENV_GALLERY_MAX_BYTES"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			panic(errorSuffix + "invalid value for ENV_GALLERY_MAX_BYTES: " + err.Error())
		}

		maxBytes = parsed
	}

	app := env.AppEnvironment{
		Name: env.GetEnvVar("ENV_APP_NAME"),
		Type: env.GetEnvVar("ENV_APP_ENV_TYPE"),
	}

	api := env.ApiEnvironment{
		BaseURL:  env.GetEnvVar("ENV_API_BASE_URL"),
		Locale:   env.GetEnvVar("ENV_API_LOCALE"),
		Email:    env.GetSecretOrEnv("api_email", "ENV_API_EMAIL"),
		Password: env.GetSecretOrEnv("api_password", "ENV_API_PASSWORD"),
		Timeout:  time.Duration(timeout) * time.Second,
		Subject:  env.GetEnvOr("ENV_API_SUBJECT", env.SelfSubject),
	}

	db := env.DBEnvironment{
		DriverName: env.GetEnvOr("ENV_DB_DRIVER", env.DriverSqlite),
		DSN:        env.GetSecretOrEnv("db_dsn", "ENV_DB_DSN"),
	}

	logsEnv := env.LogsEnvironment{
		Level:      env.GetEnvVar("ENV_APP_LOG_LEVEL"),
		Dir:        env.GetEnvVar("ENV_APP_LOGS_DIR"),
		DateFormat: env.GetEnvVar("ENV_APP_LOGS_DATE_FORMAT"),
	}

	sentryEnv := env.SentryEnvironment{
		DSN: env.GetEnvVar("ENV_SENTRY_DSN"),
	}

	galleryEnv := env.GalleryEnvironment{
		MaxBytes:       maxBytes,
		PlaceholderURL: env.GetEnvVar("ENV_GALLERY_PLACEHOLDER_URL"),
	}

	agentEnv := env.AgentEnvironment{
		HttpAddr:               env.GetEnvOr("ENV_AGENT_HTTP_ADDR", defaultAgentAddr),
		RatingSchedule:         env.GetEnvOr("ENV_RATING_SCHEDULE", defaultRatingSchedule),
		ProfileRefreshSchedule: env.GetEnvOr("ENV_PROFILE_REFRESH_SCHEDULE", defaultRefreshSchedule),
		AllowedOrigins:         portal.FilterNonEmpty(strings.Split(env.GetEnvVar("ENV_AGENT_ALLOWED_ORIGINS"), ",")),
		Username:               env.GetEnvVar("ENV_AGENT_USERNAME"),
		Password:               env.GetSecretOrEnv("agent_password", "ENV_AGENT_PASSWORD"),
		IsProduction:           app.IsProduction(), // --- only needed for validation purposes
	}

	tracingEnv := env.NewTracingEnvironment()

	if _, err := validate.Rejects(app); err != nil {
		panic(errorSuffix + "invalid [APP] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(api); err != nil {
		panic(errorSuffix + "invalid [API] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(db); err != nil {
		panic(errorSuffix + "invalid [Sql] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(logsEnv); err != nil {
		panic(errorSuffix + "invalid [logs Credentials] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(sentryEnv); err != nil {
		panic(errorSuffix + "invalid [SENTRY] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(galleryEnv); err != nil {
		panic(errorSuffix + "invalid [GALLERY] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(agentEnv); err != nil {
		panic(errorSuffix + "invalid [AGENT] model: " + validate.GetErrorsAsJson())
	}

	if _, err := validate.Rejects(tracingEnv); err != nil {
		panic(errorSuffix + "invalid [TRACING] model: " + validate.GetErrorsAsJson())
	}

	profilesync := &env.Environment{
		App:     app,
		Api:     api,
		DB:      db,
		Logs:    logsEnv,
		Sentry:  sentryEnv,
		Gallery: galleryEnv,
		Agent:   agentEnv,
		Tracing: tracingEnv,
	}

	if _, err := validate.Rejects(profilesync); err != nil {
		panic(errorSuffix + "invalid [profilesync] model: " + validate.GetErrorsAsJson())
	}

	return profilesync
}
