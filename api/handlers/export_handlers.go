package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/export"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const maxExportBody = 8 << 20

type exportWriter func(io.Writer, []export.Record) error

// ExportHandler turns chart series posted by the client into files.
type ExportHandler struct {
	logger *utils.Logger
}

func NewExportHandler(logger *utils.Logger) *ExportHandler {
	return &ExportHandler{logger: logger}
}

func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, export.WriteCSV, export.CSVContentType, export.CSVFilename)
}

func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, export.WriteXLSX, export.XLSXContentType, export.XLSXFilename)
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, write exportWriter, contentType, filename string) {
	records, err := export.DecodeRecords(http.MaxBytesReader(w, r.Body, maxExportBody))
	if err != nil {
		msg := "invalid payload"
		if errors.Is(err, export.ErrEmptyPayload) {
			msg = "empty payload"
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	writeExport(w, h.logger, records, write, contentType, filename)
}

// writeExport renders into memory first so a failure never leaves a
// truncated attachment behind.
func writeExport(w http.ResponseWriter, logger *utils.Logger, records []export.Record, write exportWriter, contentType, filename string) {
	var buf bytes.Buffer
	if err := write(&buf, records); err != nil {
		if errors.Is(err, export.ErrEmptyPayload) {
			writeError(w, http.StatusBadRequest, "empty payload")
			return
		}
		logger.Errorf("export %s: %v", filename, err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	attachment(w, contentType, filename)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
