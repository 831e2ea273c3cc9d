package routegroups

import (
	"github.com/go-chi/chi/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api/handlers"
)

func RegisterDatasets(apiRouter chi.Router, datasets *handlers.DatasetsHandler, selection *handlers.SelectionHandler) {
	apiRouter.Route("/datasets", func(r chi.Router) {
		r.MethodFunc("GET", "/", datasets.List)
		r.MethodFunc("GET", "/{dataset}/inputs", datasets.Inputs)
		r.MethodFunc("GET", "/{dataset}/data", datasets.Dimension)
		r.MethodFunc("GET", "/{dataset}/chart", datasets.ChartOptions)
		r.MethodFunc("GET", "/{dataset}/chart.svg", datasets.ChartSVG)
		r.MethodFunc("GET", "/{dataset}/export.csv", datasets.ExportCSV)
		r.MethodFunc("GET", "/{dataset}/export.xlsx", datasets.ExportXLSX)
		r.MethodFunc("POST", "/{dataset}/selection", selection.Apply)
	})
	apiRouter.MethodFunc("POST", "/charts/options", datasets.BuildOptions)
	apiRouter.MethodFunc("GET", "/sessions/{id}/url", selection.SessionURL)
}

func RegisterShare(apiRouter chi.Router, share *handlers.ShareHandler) {
	apiRouter.MethodFunc("GET", "/share/qr", share.QR)
}
