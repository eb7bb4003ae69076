// Package http exposes the stored series over a read-only JSON API.
//
// Handlers stay thin: they parse query and path parameters, call the services layer and
// render the result with go-chi/render. Every error goes through the shared
// errors.ErrorHandler and reaches the client as an RFC 7807 problem document:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Resource Not Found",
//	    "status": 404,
//	    "detail": "series midterms not found",
//	    "instance": "/api/series"
//	}
//
// NewRouter assembles the middleware chain (request ID, tracing, request logging with
// panic recovery, security headers, optional rate limiting) and mounts the health,
// series and metrics routes.
package http
