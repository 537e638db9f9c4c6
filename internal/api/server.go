// Package api exposes the HTTP surface: CRUD for the home collections,
// document upload and suggestions, the home context endpoints, and the
// Maple chat endpoints. It also hosts the MCP tool server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hometrackerhq/hometracker/internal/assistant"
	"github.com/hometrackerhq/hometracker/internal/homectx"
	"github.com/hometrackerhq/hometracker/internal/household"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

const maxRequestBodySize = 1 << 20   // 1MB
const maxDocumentBodySize = 10 << 20 // 10MB

// ChatAssistant abstracts the Maple assistant for the API layer.
type ChatAssistant interface {
	Chat(ctx context.Context, userMessage string) (assistant.Reply, error)
	History(limit int) ([]storage.ChatMessage, error)
}

type AppDeps struct {
	Store     *storage.Store
	Profile   *household.Manager
	Builder   *homectx.Builder
	Assistant ChatAssistant
	Token     string
	RateRPS   float64
	RateBurst int
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(deps.RateRPS, deps.RateBurst))
		r.Use(BearerAuth(deps.Token))

		registerCollectionRoutes(r, deps)
		registerDocumentRoutes(r, deps)

		r.Get("/context", handleGetContext(deps))
		r.Get("/summary", handleGetSummary(deps))

		r.Post("/maple/chat", handleChat(deps))
		r.Get("/maple/history", handleChatHistory(deps))

		r.Get("/profile", handleGetProfile(deps))
		r.Patch("/profile", handlePatchProfile(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.GetProfile()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		for key, value := range fields {
			if err := deps.Profile.SetField(key, value); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to set field %q: %v", key, err)
				return
			}
		}

		writeJSON(w, map[string]string{"status": "updated"})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
