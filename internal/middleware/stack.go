package middleware

import "net/http"

// Stack composes middlewares into a single wrapper, applied left to right:
//
//	stack := Stack(identityMw.Handler, identityMw.RequireAdmin)
//	mux.Handle("GET /admin/subscriptions", stack(listHandler))
//
// This is equivalent to:
//
//	mux.Handle("GET /admin/subscriptions",
//	    identityMw.Handler(identityMw.RequireAdmin(listHandler)))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
