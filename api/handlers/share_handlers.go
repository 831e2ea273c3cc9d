package handlers

import (
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// ShareHandler renders share links of client pages as QR codes.
type ShareHandler struct {
	clientURI string
	logger    *utils.Logger
}

func NewShareHandler(clientURI string, logger *utils.Logger) *ShareHandler {
	return &ShareHandler{clientURI: strings.TrimRight(clientURI, "/"), logger: logger}
}

// QR encodes <client_uri><path> where path is the page url returned by a
// selection, query included.
func (h *ShareHandler) QR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := strings.TrimSpace(q.Get("path"))
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		writeError(w, http.StatusBadRequest, "path must start with /")
		return
	}
	size := parseIntDefault(q.Get("size"), defaultQRSize)
	if size < minQRSize {
		size = minQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}
	png, err := qrcode.Encode(h.clientURI+p, qrcode.Medium, size)
	if err != nil {
		h.logger.Errorf("share qr: %v", err)
		writeError(w, http.StatusBadRequest, "link too long")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
