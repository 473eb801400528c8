package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// ClientCookie identifies a browser across tabs for preference storage.
const ClientCookie = "askme_client"

type ThemeHandler struct {
	service *app.ThemeService
}

func NewThemeHandler(service *app.ThemeService) *ThemeHandler {
	return &ThemeHandler{service: service}
}

type themeBody struct {
	Theme domain.Theme `json:"theme"`
}

// Get returns the stored theme, light when none is stored.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID := ensureClientID(w, r)
	writeJSON(w, http.StatusOK, themeBody{Theme: h.service.Get(r.Context(), clientID)})
}

// Put stores a new theme for the client.
func (h *ThemeHandler) Put(w http.ResponseWriter, r *http.Request) {
	clientID := ensureClientID(w, r)
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid theme payload")
		return
	}
	if err := h.service.Set(r.Context(), clientID, body.Theme); err != nil {
		if errors.Is(err, domain.ErrInvalidTheme) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("save theme for %s: %v", clientID, err)
		writeError(w, http.StatusInternalServerError, "could not save theme")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func ensureClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().AddDate(1, 0, 0),
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
