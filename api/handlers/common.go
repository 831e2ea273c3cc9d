package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const fetchErrorMessage = "couldn't fetch data"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFetchError maps data layer errors to a status. Anything that is not
// an input error is reported as an upstream failure and logged.
func writeFetchError(w http.ResponseWriter, r *http.Request, logger *utils.Logger, err error) {
	switch {
	case errors.Is(err, series.ErrUnknownDataset):
		writeError(w, http.StatusNotFound, "unknown dataset")
	case errors.Is(err, series.ErrUnknownDimension),
		errors.Is(err, series.ErrUnknownUnit),
		errors.Is(err, series.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadGateway, fetchErrorMessage)
	}
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
}

func parseIntDefault(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return def
	}
	return n
}
