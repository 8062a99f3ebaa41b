package api

import (
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Triage/internal/broker"
	"github.com/MikeSquared-Agency/Triage/internal/skill"
)

// profileTags is how many diagnostic tags are listed per engineer.
const profileTags = 8

type AdminHandler struct {
	broker *broker.Broker
}

func NewAdminHandler(b *broker.Broker) *AdminHandler {
	return &AdminHandler{broker: b}
}

type EngineerInfo struct {
	Engineer string      `json:"engineer"`
	TopTags  []skill.Tag `json:"top_tags"`
}

func (h *AdminHandler) Engineers(w http.ResponseWriter, r *http.Request) {
	a, err := h.broker.Artifacts()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	model := a.Matcher.Model()
	infos := []EngineerInfo{}
	for _, eng := range model.Engineers() {
		infos = append(infos, EngineerInfo{Engineer: eng, TopTags: model.TopTags(eng, profileTags)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"engineers": infos,
		"documents": model.Documents,
		"built_at":  a.BuiltAt.Format(time.RFC3339),
	})
}

func (h *AdminHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.broker.Rebuild(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a, _ := h.broker.Artifacts()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"status":   "rebuilt",
		"built_at": a.BuiltAt.Format(time.RFC3339),
	})
}
