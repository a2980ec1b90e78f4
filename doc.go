// Package baldr is a resource-oriented HTTP API dispatch layer. A resource
// API declares which capabilities it supports — List, Create, Retrieve,
// Update, Delete, plus named actions — and baldr derives the URL routes,
// allowed HTTP methods, content-type negotiation, and error responses from
// that declaration.
//
// An API is built from a plain Go value implementing the capability
// interfaces it needs:
//
//	type widgetAPI struct{ store *widgetStore }
//
//	func (a *widgetAPI) ListResources(r *http.Request, offset, limit int) ([]any, error) { ... }
//	func (a *widgetAPI) RetrieveResource(r *http.Request, id string) (any, error)        { ... }
//
//	api, err := baldr.NewResourceAPI(&widgetAPI{store}, Widget{})
//
// APIs are mounted together in a Collection, which implements http.Handler:
//
//	c := baldr.NewCollection("api", api)
//	c.Use(baldr.Logger(slog.Default()))
//	http.ListenAndServe(":8080", c)
//
// This exposes:
//
//	GET /api/widgets/       — list (offset/limit query params)
//	GET /api/widgets/{id}/  — detail
//
// Request and response bodies are negotiated against a codec registry
// (JSON, CBOR, and YAML by default) using the Accept header, the
// Content-Type header, and a configured default, in that order. Failures
// are reported as structured Error resources encoded with the negotiated
// codec; only a completely failed negotiation produces a plain 406.
//
// Middleware uses the standard func(http.Handler) http.Handler signature,
// so the entire Go middleware ecosystem works natively.
package baldr
