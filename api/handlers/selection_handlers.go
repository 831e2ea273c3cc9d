package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const maxSelectionBody = 1 << 20

// SelectionHandler applies selection actions and mirrors the result into the
// session history.
type SelectionHandler struct {
	codecs  urlstate.Codecs
	history *urlstate.History
	logger  *utils.Logger
}

func NewSelectionHandler(codecs urlstate.Codecs, history *urlstate.History, logger *utils.Logger) *SelectionHandler {
	return &SelectionHandler{codecs: codecs, history: history, logger: logger}
}

type selectionRequest struct {
	Session string                  `json:"session"`
	Query   string                  `json:"query"`
	Action  selection.ActionPayload `json:"action"`
}

type selectionResponse struct {
	Session string          `json:"session"`
	State   selection.State `json:"state"`
	URL     string          `json:"url"`
	Title   string          `json:"title"`
	Replace bool            `json:"replace"`
}

func (h *SelectionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "dataset")
	codec, ok := h.codecs[slug]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown dataset")
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	action, err := req.Action.Action()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(req.Query), "?"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query")
		return
	}
	session := strings.TrimSpace(req.Session)
	if session == "" {
		id, err := uuid.NewV4()
		if err != nil {
			h.logger.Errorf("selection session id: %v", err)
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		session = id.String()
	} else if err := utils.ValidateSessionID(session); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prev := codec.Parse(values)
	next := selection.NewReducer(codec.Profile(), h.logger).Reduce(prev, action)
	target := h.history.Synchronizer(session, codec).Sync(PagePath(slug), prev, next)
	writeJSON(w, http.StatusOK, selectionResponse{
		Session: session,
		State:   next,
		URL:     target,
		Title:   selection.GraphTitle(codec.Profile().Label, next),
		Replace: true,
	})
}

// SessionURL answers the url currently held by a session's history entry.
func (h *SelectionHandler) SessionURL(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := utils.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, ok := h.history.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
