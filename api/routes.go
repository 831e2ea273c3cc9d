package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api/routegroups"
)

func (s *Server) registerRoutes() {
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.securityHeadersMiddleware)
	s.router.Use(s.corsMiddleware)

	h := s.newRouteHandlers()
	routegroups.RegisterExports(s.router, h.export, h.screenshot)
	s.router.MethodFunc("GET", "/embed/{dataset}", h.datasets.Embed)

	apiRouter := chi.NewRouter()
	apiRouter.Use(s.jsonMiddleware)
	routegroups.RegisterDatasets(apiRouter, h.datasets, h.selection)
	routegroups.RegisterShare(apiRouter, h.share)
	routegroups.RegisterAdmin(apiRouter, routegroups.Guards{RequireAdminKey: s.requireAdminKey}, h.admin)
	s.router.Mount("/api", apiRouter)
}
