package handlers

import "net/http"

// UserResolver extracts the authenticated user id from a request, or ""
// when the caller has no session. Credential and session management live
// in the fronting auth layer; this service only consumes its verdict.
type UserResolver func(r *http.Request) string

// HeaderUserResolver trusts the X-User-Id header set by the auth proxy.
func HeaderUserResolver(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}
