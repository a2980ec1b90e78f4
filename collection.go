package baldr

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Collection mounts an ordered set of resource APIs under a shared name
// segment. It implements http.Handler. The derived route table is built on
// first request and memoized; the collection is treated as immutable from
// that point on, so Add and Use must happen during startup.
type Collection struct {
	name       string
	apis       []*ResourceAPI
	middleware []Middleware

	once    sync.Once
	handler http.Handler
}

// NewCollection creates a collection mounted under the given name
// ("api" mounts resource routes below /api/).
func NewCollection(name string, apis ...*ResourceAPI) *Collection {
	return &Collection{name: name, apis: apis}
}

// Add appends resource APIs to the collection.
func (c *Collection) Add(apis ...*ResourceAPI) {
	c.apis = append(c.apis, apis...)
}

// Use adds middleware. Middleware is applied in the order added, outside
// the dispatch layer.
func (c *Collection) Use(mw ...Middleware) {
	c.middleware = append(c.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (c *Collection) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.once.Do(c.build)
	c.handler.ServeHTTP(w, r)
}

// build assembles the memoized dispatch handler and bakes the middleware
// chain around it.
func (c *Collection) build() {
	type boundRoute struct {
		api   *ResourceAPI
		route route
	}

	var routes []boundRoute
	for _, api := range c.apis {
		for _, rt := range api.routes {
			routes = append(routes, boundRoute{api: api, route: rt})
		}
	}

	prefix := ""
	if c.name != "" {
		prefix = c.name + "/"
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			http.NotFound(w, r)
			return
		}

		for _, bound := range routes {
			if p, matched := bound.route.match(rest); matched {
				bound.api.serve(w, r, bound.route.kind(p), p)
				return
			}
		}
		http.NotFound(w, r)
	}))

	for i := len(c.middleware) - 1; i >= 0; i-- {
		handler = c.middleware[i](handler)
	}
	c.handler = handler
}

// ListenAndServe starts an HTTP server for the collection on the given
// address. It blocks until the context is cancelled, then shuts down
// gracefully.
func (c *Collection) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           c,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
