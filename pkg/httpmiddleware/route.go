package httpmiddleware

import (
	"context"
	"net/http"
)

// UnknownRoute labels requests that matched no route.
const UnknownRoute = "unknown"

type routeKey struct{}

type routeHolder struct {
	route string
}

// TrackRoute returns a middleware that reserves a slot in the request context
// for the matched route template. The router fills it with SetRoute, and
// outer middlewares read it back with RouteFromContext once the handler
// returns.
func TrackRoute() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), routeKey{}, &routeHolder{})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetRoute records the matched route template, e.g. "/api/products/:ref".
// It is a no-op outside TrackRoute.
func SetRoute(ctx context.Context, route string) {
	if h, ok := ctx.Value(routeKey{}).(*routeHolder); ok {
		h.route = route
	}
}

// RouteFromContext returns the route recorded by SetRoute, or UnknownRoute.
func RouteFromContext(ctx context.Context) string {
	if h, ok := ctx.Value(routeKey{}).(*routeHolder); ok && h.route != "" {
		return h.route
	}
	return UnknownRoute
}
