package handlers

import (
	"net/http"

	"github.com/cloo-solutions/askai/internal/api"
)

type HealthResponse struct {
	Status           string `json:"status"`
	FAQEntries       int    `json:"faq_entries"`
	RemoteConfigured bool   `json:"remote_configured"`
}

// HealthHandler reports the state fixed at startup.
type HealthHandler struct {
	faqEntries       int
	remoteConfigured bool
}

func NewHealthHandler(faqEntries int, remoteConfigured bool) *HealthHandler {
	return &HealthHandler{faqEntries: faqEntries, remoteConfigured: remoteConfigured}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		FAQEntries:       h.faqEntries,
		RemoteConfigured: h.remoteConfigured,
	})
}
