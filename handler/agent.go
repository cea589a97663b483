package handler

import (
	"errors"
	"fmt"
	baseHttp "net/http"
	"strconv"
	"time"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/http"
	"github.com/oullin/profilesync/pkg/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const agentDateTimeLayout = "2006-01-02 15:04:05"

// AgentHandler exposes the synchronised profile and the state of the
// background jobs over HTTP.
type AgentHandler struct {
	view     *ProfileView
	jobs     *scheduler.Group
	gatherer prometheus.Gatherer
	now      func() time.Time
}

func MakeAgentHandler(view *ProfileView, jobs *scheduler.Group, gatherer prometheus.Gatherer) AgentHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return AgentHandler{
		view:     view,
		jobs:     jobs,
		gatherer: gatherer,
		now:      time.Now,
	}
}

func (h AgentHandler) Health(w baseHttp.ResponseWriter, r *baseHttp.Request) *http.ApiError {
	resp := http.MakeNoCacheResponse(w, r)

	data := payload.HealthResponse{
		Message:       "alive",
		DateTime:      h.now().UTC().Format(agentDateTimeLayout),
		ProfileLoaded: !h.view.Current().IsEmpty(),
		Version:       h.view.store.Version(),
	}

	if err := resp.RespondOk(data); err != nil {
		return http.LogInternalError("could not encode health response", err)
	}

	return nil
}

// Profile serves the current read model. The store version doubles as the
// ETag so unchanged profiles are answered with 304.
func (h AgentHandler) Profile(w baseHttp.ResponseWriter, r *baseHttp.Request) *http.ApiError {
	version := h.view.store.Version()
	profile := h.view.Current()

	if profile.IsEmpty() {
		return http.NotFound("profile has not been loaded yet")
	}

	resp := http.MakeResponseFrom(strconv.FormatUint(version, 10), w, r)

	if resp.HasCache() {
		resp.RespondWithNotModified()

		return nil
	}

	if err := resp.RespondOk(profile); err != nil {
		return http.LogInternalError("could not encode profile response", err)
	}

	return nil
}

func (h AgentHandler) Refresh(w baseHttp.ResponseWriter, r *baseHttp.Request) *http.ApiError {
	req, err := http.ParseRequestBody[payload.RefreshRequest](r)
	if err != nil {
		return http.LogBadRequestError("could not read refresh request", err)
	}

	kind, err := ParseMutationKind(req.Slice)
	if err != nil {
		return http.BadRequestError(err.Error())
	}

	if err := h.view.RefreshAfter(r.Context(), kind); err != nil {
		if errors.Is(err, ErrProfileNotLoaded) {
			return http.NotFound("profile has not been loaded yet")
		}

		return http.ServiceUnavailable(fmt.Sprintf("could not refresh %s", kind), err)
	}

	resp := http.MakeNoCacheResponse(w, r)

	data := payload.RefreshResponse{
		Slice:   kind.String(),
		Version: h.view.store.Version(),
		Profile: h.view.Current(),
	}

	if err := resp.RespondOk(data); err != nil {
		return http.LogInternalError("could not encode refresh response", err)
	}

	return nil
}

func (h AgentHandler) Jobs(w baseHttp.ResponseWriter, r *baseHttp.Request) *http.ApiError {
	resp := http.MakeNoCacheResponse(w, r)
	items := []payload.JobStatusResponse{}

	if h.jobs != nil {
		for _, status := range h.jobs.Statuses() {
			item := payload.JobStatusResponse{
				Name:       status.Name,
				Expression: status.Expression,
				Runs:       status.Runs,
				Skipped:    status.Skipped,
			}

			if !status.LastRun.IsZero() {
				item.LastRun = status.LastRun.UTC().Format(agentDateTimeLayout)
			}

			if status.LastErr != nil {
				item.LastError = status.LastErr.Error()
			}

			items = append(items, item)
		}
	}

	if err := resp.RespondOk(items); err != nil {
		return http.LogInternalError("could not encode jobs response", err)
	}

	return nil
}

// Metrics bypasses the API error handling since Prometheus uses its own format.
func (h AgentHandler) Metrics() baseHttp.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})
}
