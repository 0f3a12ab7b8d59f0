package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/backflowdir/discovery/web/middleware"
)

// Router builds the HTTP routing table with the standard middleware stack.
func (g *HandlerGroup) Router(log *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", g.Search.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/geocode", g.Geo.Geocode).Methods(http.MethodGet)
	api.HandleFunc("/reverse", g.Geo.Reverse).Methods(http.MethodGet)
	api.HandleFunc("/suggest", g.Geo.Suggest).Methods(http.MethodGet)
	api.HandleFunc("/listings/{location}", g.Search.Search).Methods(http.MethodGet)

	return middleware.Chain(r,
		middleware.RequestID,
		middleware.RequestLogger(log),
		middleware.SecurityHeaders,
		middleware.CORS,
	)
}
