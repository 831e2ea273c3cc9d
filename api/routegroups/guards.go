package routegroups

import "net/http"

type Guards struct {
	RequireAdminKey func(http.HandlerFunc) http.HandlerFunc
}

// Admin wraps handler with the admin key check. Without a guard the route
// is refused.
func (g Guards) Admin(handler http.HandlerFunc) http.HandlerFunc {
	if g.RequireAdminKey == nil {
		return func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}
	return g.RequireAdminKey(handler)
}
