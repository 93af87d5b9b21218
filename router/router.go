package router

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
)

// New returns a mux serving the probes, the metrics and the huma API
// configured by opts, in order.
func New(
	title, version string,
	readiness http.HandlerFunc,
	metrics http.HandlerFunc,
	opts ...func(huma.API),
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("GET /readiness", readiness)
	mux.HandleFunc("GET /metrics", metrics)

	api := humago.New(mux, huma.DefaultConfig(title, version))
	for _, opt := range opts {
		opt(api)
	}

	return mux
}

// OptUseMiddleware adds middlewares to the operations registered after it.
func OptUseMiddleware(middlewares ...func(huma.Context, func(huma.Context))) func(huma.API) {
	return func(api huma.API) { api.UseMiddleware(middlewares...) }
}

// OptGroup applies opts to a group of operations mounted at prefix.
func OptGroup(prefix string, opts ...func(huma.API)) func(huma.API) {
	return func(api huma.API) {
		group := huma.NewGroup(api, prefix)
		for _, opt := range opts {
			opt(group)
		}
	}
}

// OptAutoRegister registers the operations of server with [huma.AutoRegister].
func OptAutoRegister(server any) func(huma.API) {
	return func(api huma.API) { huma.AutoRegister(api, server) }
}
