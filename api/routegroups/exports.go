package routegroups

import (
	"github.com/go-chi/chi/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api/handlers"
)

// RegisterExports mounts the file endpoints served outside /api.
func RegisterExports(router chi.Router, export *handlers.ExportHandler, shots *handlers.ScreenshotHandler) {
	router.MethodFunc("POST", "/export/csv", export.CSV)
	router.MethodFunc("POST", "/export/xlsx", export.XLSX)
	router.MethodFunc("GET", "/screenshot/*", shots.Capture)
}
