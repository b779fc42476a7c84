package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"parley/internal/redaction"
	"parley/pkg/brain"
	"parley/pkg/logger"
	"parley/pkg/store"
	"parley/pkg/utils"
)

// RegisterAdmin registers admin-only routes onto the admin subrouter.
func RegisterAdmin(r *mux.Router, b *brain.Brain) {
	r.HandleFunc("/health", adminHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", adminStats(b)).Methods(http.MethodGet)
	r.HandleFunc("/purge", adminPurge(b)).Methods(http.MethodPost)
	r.HandleFunc("/export", adminExport(b)).Methods(http.MethodGet)
	r.HandleFunc("/keys", adminListKeys).Methods(http.MethodGet)
	r.HandleFunc("/redaction/run", adminRedactionRun).Methods(http.MethodPost)
	logger.Info("admin_routes_registered")
}

func adminHealth(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok", "service": "parley"})
}

func adminStats(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			utils.JSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, b.Stats())
	}
}

// adminPurge redacts a phrase from all four stores. The phrase is rejected
// before any mutation when empty, so a 400 never leaves partial state.
func adminPurge(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			utils.JSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		var req struct {
			Phrase string `json:"phrase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		res, err := b.Purge(req.Phrase)
		if err != nil {
			if errors.Is(err, brain.ErrEmptyPhrase) {
				utils.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, res)
	}
}

func adminExport(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			utils.JSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, b.Export())
	}
}

// adminListKeys lists raw keys in the underlying store, optionally limited
// by a `prefix` query param.
func adminListKeys(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	keys, err := store.ListKeys(r.URL.Query().Get("prefix"))
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"keys": keys})
}

// adminRedactionRun triggers an immediate banned-phrase sweep, so tests and
// operators do not have to wait for the cron schedule.
func adminRedactionRun(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	res, err := redaction.RunImmediate()
	if err != nil {
		utils.JSONError(w, http.StatusConflict, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, res)
}

// isAdmin checks if the request carries an admin or backend role.
func isAdmin(r *http.Request) bool {
	role := r.Header.Get("X-Role-Name")
	return role == "admin" || role == "backend"
}
