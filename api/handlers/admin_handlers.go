package handlers

import (
	"net/http"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/screenshot"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
	"github.com/dataforgoodfr/shiftdataportal-sub001/tasks"
)

// AdminHandler exposes cache maintenance behind the admin key.
type AdminHandler struct {
	client  *series.Client
	warmer  *tasks.CacheWarmer
	history *urlstate.History
	shots   *screenshot.Service
	logger  *utils.Logger
}

func NewAdminHandler(client *series.Client, warmer *tasks.CacheWarmer, history *urlstate.History, shots *screenshot.Service, logger *utils.Logger) *AdminHandler {
	return &AdminHandler{client: client, warmer: warmer, history: history, shots: shots, logger: logger}
}

type adminStats struct {
	Cache       series.CacheStats       `json:"cache"`
	Sessions    int                     `json:"sessions"`
	URLWrites   uint64                  `json:"url_writes"`
	Screenshots *screenshot.Stats       `json:"screenshots,omitempty"`
	Warmer      *tasks.CacheWarmerStats `json:"warmer,omitempty"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats())
}

func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.client.Purge()
	h.logger.Printf("admin: cache purged")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": h.stats()})
}

// Warm refills the cache now. The scheduled warmer is used when configured
// so its run counters stay accurate.
func (h *AdminHandler) Warm(w http.ResponseWriter, r *http.Request) {
	var (
		n   int
		err error
	)
	if h.warmer != nil {
		n, err = h.warmer.RunOnce(r.Context())
	} else {
		n, err = h.client.Warm(r.Context())
	}
	if err != nil {
		h.logger.Errorf("admin: cache warm: %v", err)
		writeError(w, http.StatusBadGateway, fetchErrorMessage)
		return
	}
	h.logger.Printf("admin: cache warmed entries=%d", n)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "entries": n, "stats": h.stats()})
}

func (h *AdminHandler) stats() adminStats {
	out := adminStats{Cache: h.client.CacheStats()}
	if h.history != nil {
		out.Sessions = h.history.Len()
		out.URLWrites = h.history.Writes()
	}
	if h.shots != nil {
		s := h.shots.Stats()
		out.Screenshots = &s
	}
	if h.warmer != nil {
		s := h.warmer.StatsSnapshot()
		out.Warmer = &s
	}
	return out
}
