package routegroups

import (
	"github.com/go-chi/chi/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api/handlers"
)

func RegisterAdmin(apiRouter chi.Router, g Guards, admin *handlers.AdminHandler) {
	apiRouter.Route("/admin", func(r chi.Router) {
		r.MethodFunc("GET", "/cache", g.Admin(admin.Stats))
		r.MethodFunc("POST", "/cache/purge", g.Admin(admin.Purge))
		r.MethodFunc("POST", "/cache/warm", g.Admin(admin.Warm))
	})
}
