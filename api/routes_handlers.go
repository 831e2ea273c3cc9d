package api

import "github.com/dataforgoodfr/shiftdataportal-sub001/api/handlers"

type routeHandlers struct {
	datasets   *handlers.DatasetsHandler
	selection  *handlers.SelectionHandler
	export     *handlers.ExportHandler
	screenshot *handlers.ScreenshotHandler
	share      *handlers.ShareHandler
	admin      *handlers.AdminHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		datasets:   handlers.NewDatasetsHandler(s.series, s.codecs, s.logger),
		selection:  handlers.NewSelectionHandler(s.codecs, s.history, s.logger),
		export:     handlers.NewExportHandler(s.logger),
		screenshot: handlers.NewScreenshotHandler(s.screenshots, s.logger),
		share:      handlers.NewShareHandler(s.cfg.ClientURI, s.logger),
		admin:      handlers.NewAdminHandler(s.series, s.warmer, s.history, s.screenshots, s.logger),
	}
}
