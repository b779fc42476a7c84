// Package api wires the engine's boundary interface onto HTTP routes:
// inbound text delivery, feedback sampling and the admin redaction surface.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"parley/pkg/api/handlers"
	"parley/pkg/brain"
)

// Router returns the HTTP handler exposing the core engine. All state goes
// through the provided Brain.
func Router(b *brain.Brain) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterMessages(v1, b)
	handlers.RegisterFeedback(v1, b)

	admin := v1.PathPrefix("/admin").Subrouter()
	handlers.RegisterAdmin(admin, b)

	return r
}
