// Command sample demonstrates github.com/movermeyer/baldr with an
// in-memory widget API.
//
// Run:
//
//	go run ./cmd/sample
//
// Then explore:
//
//	GET    http://localhost:8080/api/widgets/             — list widgets
//	POST   http://localhost:8080/api/widgets/             — create widget
//	GET    http://localhost:8080/api/widgets/{id}/        — get widget
//	PUT    http://localhost:8080/api/widgets/{id}/        — replace widget
//	DELETE http://localhost:8080/api/widgets/{id}/        — delete widget
//	POST   http://localhost:8080/api/widgets/{id}/publish — publish widget
//
// Responses honor the Accept header: application/json (default),
// application/cbor, or application/yaml.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"

	"github.com/movermeyer/baldr"
)

// Widget is the resource served by the sample API.
type Widget struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Published bool   `json:"published" yaml:"published"`
}

// widgetAPI is an in-memory implementation of the widget resource.
type widgetAPI struct {
	mu      sync.Mutex
	seq     int
	widgets map[int]Widget
}

func newWidgetAPI() *widgetAPI {
	return &widgetAPI{widgets: make(map[int]Widget)}
}

func (a *widgetAPI) ListResources(_ *http.Request, offset, limit int) ([]any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]int, 0, len(a.widgets))
	for id := range a.widgets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var page []any
	for i := offset; i < len(ids) && len(page) < limit; i++ {
		page = append(page, a.widgets[ids[i]])
	}
	return page, nil
}

func (a *widgetAPI) CreateResource(_ *http.Request, resource any, _ bool) (any, error) {
	w := resource.(*Widget)
	if w.Name == "" {
		return nil, &baldr.ValidationError{Fields: map[string][]string{
			"name": {"must not be empty"},
		}}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	w.ID = a.seq
	a.widgets[w.ID] = *w
	return &baldr.Response{Resource: *w, Status: http.StatusCreated}, nil
}

func (a *widgetAPI) RetrieveResource(_ *http.Request, id string) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.get(id)
}

func (a *widgetAPI) UpdateResource(_ *http.Request, id string, resource any, complete bool) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.get(id)
	if err != nil {
		return nil, err
	}

	w := resource.(*Widget)
	w.ID = existing.(Widget).ID
	if !complete && w.Name == "" {
		w.Name = existing.(Widget).Name
	}
	a.widgets[w.ID] = *w
	return *w, nil
}

func (a *widgetAPI) DeleteResource(_ *http.Request, id string) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.get(id); err != nil {
		return nil, err
	}
	n, _ := strconv.Atoi(id)
	delete(a.widgets, n)
	return nil, nil
}

// publish is a detail action: POST /api/widgets/{id}/publish.
func (a *widgetAPI) publish(_ *http.Request, p baldr.Params) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.get(p.ResourceID)
	if err != nil {
		return nil, err
	}
	w := existing.(Widget)
	w.Published = true
	a.widgets[w.ID] = w
	return w, nil
}

// get looks up a widget by its URL id segment. Callers hold the lock.
func (a *widgetAPI) get(id string) (any, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, baldr.NotFound("widget %q not found", id)
	}
	w, ok := a.widgets[n]
	if !ok {
		return nil, baldr.NotFound("widget %q not found", id)
	}
	return w, nil
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "include error details in 500 responses")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	impl := newWidgetAPI()

	opts := []baldr.Option{
		baldr.WithDetailAction("publish", impl.publish, http.MethodPost),
	}
	if *debug {
		opts = append(opts, baldr.WithDebug())
	}

	widgets, err := baldr.NewResourceAPI(impl, Widget{}, opts...)
	if err != nil {
		slog.Error("building widget API failed", "err", err)
		os.Exit(1)
	}

	c := baldr.NewCollection("api", widgets)
	c.Use(
		baldr.Recovery(),
		baldr.RequestID(),
		baldr.Logger(slog.Default()),
		baldr.RateLimit(baldr.RateLimitConfig{Rate: 50, Burst: 100}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("listening", "addr", *addr)
	if err := c.ListenAndServe(ctx, *addr); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
