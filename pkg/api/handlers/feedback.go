package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"parley/pkg/brain"
	"parley/pkg/models"
	"parley/pkg/utils"
)

// RegisterFeedback registers the feedback-sampling and conversation-log
// endpoints.
func RegisterFeedback(r *mux.Router, b *brain.Brain) {
	r.HandleFunc("/feedback", postFeedback(b)).Methods(http.MethodPost)
	r.HandleFunc("/feedback", listFeedback(b)).Methods(http.MethodGet)
	r.HandleFunc("/conversations", listConversations(b)).Methods(http.MethodGet)
}

func postFeedback(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Samples []models.Feedback `json:"samples"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if len(req.Samples) == 0 {
			utils.JSONError(w, http.StatusBadRequest, "samples missing")
			return
		}
		for _, s := range req.Samples {
			if s.Content == "" {
				utils.JSONError(w, http.StatusBadRequest, "sample content missing")
				return
			}
			if s.Up < 0 || s.Down < 0 {
				utils.JSONError(w, http.StatusBadRequest, "reaction counts must be non-negative")
				return
			}
		}
		if err := b.RecordFeedback(req.Samples); err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"recorded": len(req.Samples)})
	}
}

func listFeedback(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"feedback": b.Export().Feedback})
	}
}

func listConversations(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"conversations": b.Export().Pairs})
	}
}
