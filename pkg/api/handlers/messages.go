package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"parley/pkg/brain"
	"parley/pkg/logger"
	"parley/pkg/utils"
)

// RegisterMessages registers the inbound-text endpoints.
func RegisterMessages(r *mux.Router, b *brain.Brain) {
	r.HandleFunc("/messages", createMessage(b)).Methods(http.MethodPost)
	r.HandleFunc("/messages", listMessages(b)).Methods(http.MethodGet)
}

type inboundRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	// TS is epoch milliseconds; zero means "now".
	TS int64 `json:"ts"`
	// ReplyTo carries the content of the prior message when this one is a reply.
	ReplyTo string `json:"reply_to"`
	// Seed drives the generator; identical seeds reproduce identical
	// replies against the same model state. Defaults to a fresh
	// high-resolution timestamp when omitted.
	Seed string `json:"seed"`
}

func createMessage(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inboundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Content == "" {
			utils.JSONError(w, http.StatusBadRequest, "content missing")
			return
		}
		if req.TS == 0 {
			req.TS = time.Now().UTC().UnixMilli()
		}
		if req.Seed == "" {
			req.Seed = strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		}

		reply, err := b.HandleInbound(req.Author, req.Content, req.TS, req.ReplyTo, req.Seed)
		if err != nil {
			// The reply is still valid; the failed commit is logged and the
			// in-memory state catches up on the next successful save.
			logger.Warn("inbound_persist_degraded", "error", err)
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"reply": reply})
	}
}

func listMessages(b *brain.Brain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs := b.Export().Messages
		if limStr := r.URL.Query().Get("limit"); limStr != "" {
			if lim, err := strconv.Atoi(limStr); err == nil && lim >= 0 && lim < len(msgs) {
				msgs = msgs[len(msgs)-lim:]
			}
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"messages": msgs})
	}
}
