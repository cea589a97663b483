package router

import (
	baseHttp "net/http"

	"github.com/oullin/profilesync/handler"
	"github.com/oullin/profilesync/pkg/http"
	"github.com/oullin/profilesync/pkg/middleware"
)

type Router struct {
	Mux      *baseHttp.ServeMux
	Pipeline middleware.Pipeline
	Agent    handler.AgentHandler
}

func (r *Router) PublicPipelineFor(apiHandler http.ApiHandler) baseHttp.HandlerFunc {
	return http.MakeApiHandler(
		r.Pipeline.Chain(
			apiHandler,
			r.Pipeline.RequestID.Handle,
		),
	)
}

func (r *Router) PipelineFor(apiHandler http.ApiHandler) baseHttp.HandlerFunc {
	return http.MakeApiHandler(
		r.Pipeline.Chain(
			apiHandler,
			r.Pipeline.RequestID.Handle,
			r.Pipeline.Guard.Handle,
		),
	)
}

func (r *Router) Health() {
	r.Mux.HandleFunc("GET /health", r.PublicPipelineFor(r.Agent.Health))
}

func (r *Router) Profile() {
	r.Mux.HandleFunc("GET /profile", r.PipelineFor(r.Agent.Profile))
	r.Mux.HandleFunc("POST /profile/refresh", r.PipelineFor(r.Agent.Refresh))
}

func (r *Router) Jobs() {
	r.Mux.HandleFunc("GET /jobs", r.PipelineFor(r.Agent.Jobs))
}

func (r *Router) Metrics() {
	r.Mux.Handle("GET /metrics", r.Agent.Metrics())
}

// Boot registers every agent route.
func (r *Router) Boot() {
	r.Health()
	r.Profile()
	r.Jobs()
	r.Metrics()
}
