package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/screenshot"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const (
	ScreenshotFilename    = "screenshot.png"
	ScreenshotContentType = "image/png"
)

type ScreenshotHandler struct {
	svc    *screenshot.Service
	logger *utils.Logger
}

func NewScreenshotHandler(svc *screenshot.Service, logger *utils.Logger) *ScreenshotHandler {
	return &ScreenshotHandler{svc: svc, logger: logger}
}

// Capture renders the client page behind /screenshot/<path> and returns
// the PNG of its chart.
func (h *ScreenshotHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeError(w, http.StatusServiceUnavailable, "screenshots disabled")
		return
	}
	png, err := h.svc.Capture(r.Context(), "/"+chi.URLParam(r, "*"), r.URL.Query())
	if err != nil {
		if errors.Is(err, screenshot.ErrDisallowedPath) {
			writeError(w, http.StatusInternalServerError, "screenshot path not allowed")
			return
		}
		h.logger.Errorf("screenshot %s: %v", r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "screenshot failed")
		return
	}
	attachment(w, ScreenshotContentType, ScreenshotFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
