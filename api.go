package baldr

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// defaultIDPattern matches numeric resource ids.
const defaultIDPattern = `\d+`

// actionNamePattern constrains action names in URLs and registrations.
var actionNamePattern = regexp.MustCompile(`^[-\w]+$`)

// ResourceAPI exposes one resource type over HTTP. It is built once at
// startup and read-only afterwards: the dispatch table and routes are
// derived from the declared capabilities at construction time and never
// mutated during a request.
type ResourceAPI struct {
	impl         any
	name         string
	prefix       string
	resourceType reflect.Type
	idPattern    string
	resolvers    []ContentTypeResolver
	codecs       *CodecRegistry
	debug        bool

	declared      []Capability
	listActions   []actionBinding
	detailActions []actionBinding

	table  *dispatchTable
	routes []route
}

type actionBinding struct {
	name  string
	verbs []string
	fn    ActionFunc
}

// Option configures a ResourceAPI.
type Option func(*ResourceAPI)

// WithName overrides the API name used in URLs. The default is the
// lower-cased resource type name with an "s" appended.
func WithName(name string) Option {
	return func(a *ResourceAPI) {
		a.name = name
	}
}

// WithURLPrefix prepends a prefix to the API's URL segment.
func WithURLPrefix(prefix string) Option {
	return func(a *ResourceAPI) {
		a.prefix = prefix
	}
}

// WithIDPattern sets the regular expression a resource id segment must
// match. The default accepts digits only.
func WithIDPattern(pattern string) Option {
	return func(a *ResourceAPI) {
		a.idPattern = pattern
	}
}

// WithResolvers replaces the content-type resolver chain.
func WithResolvers(resolvers ...ContentTypeResolver) Option {
	return func(a *ResourceAPI) {
		a.resolvers = resolvers
	}
}

// WithCodecs replaces the codec registry.
func WithCodecs(codecs *CodecRegistry) Option {
	return func(a *ResourceAPI) {
		a.codecs = codecs
	}
}

// WithDebug enables diagnostic detail on unhandled errors: the error text
// and, for panics, the stack trace are included in the 500 response.
func WithDebug() Option {
	return func(a *ResourceAPI) {
		a.debug = true
	}
}

// WithCapabilities declares the API's capabilities explicitly, replacing
// detection from the implementation's interfaces. A declared capability
// whose delegate interface is not implemented responds 501 — declaring it
// promises an API surface, so the gap is a server misconfiguration.
func WithCapabilities(caps ...Capability) Option {
	return func(a *ResourceAPI) {
		a.declared = caps
	}
}

// WithListAction registers a named action on the list URL
// ({name} after the resource segment). Verbs default to GET.
func WithListAction(name string, fn ActionFunc, verbs ...string) Option {
	return func(a *ResourceAPI) {
		a.listActions = append(a.listActions, newActionBinding(name, fn, verbs))
	}
}

// WithDetailAction registers a named action on the detail URL
// ({resourceId}/{name}). Verbs default to GET.
func WithDetailAction(name string, fn ActionFunc, verbs ...string) Option {
	return func(a *ResourceAPI) {
		a.detailActions = append(a.detailActions, newActionBinding(name, fn, verbs))
	}
}

func newActionBinding(name string, fn ActionFunc, verbs []string) actionBinding {
	if len(verbs) == 0 {
		verbs = []string{http.MethodGet}
	}
	lowered := make([]string, len(verbs))
	for i, v := range verbs {
		lowered[i] = strings.ToLower(v)
	}
	return actionBinding{name: name, verbs: lowered, fn: fn}
}

// NewResourceAPI builds a resource API from an implementation value and a
// prototype of the resource it serves. Capabilities are detected from the
// delegate interfaces impl implements unless WithCapabilities overrides
// the declaration. Construction fails on conflicting handler bindings,
// invalid action names, or an invalid id pattern.
func NewResourceAPI(impl any, resource any, opts ...Option) (*ResourceAPI, error) {
	t := reflect.TypeOf(resource)
	if t == nil {
		return nil, fmt.Errorf("baldr: resource prototype must not be nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	a := &ResourceAPI{
		impl:         impl,
		resourceType: t,
		idPattern:    defaultIDPattern,
		codecs:       DefaultCodecRegistry(),
	}
	a.resolvers = DefaultResolvers("application/json")

	for _, opt := range opts {
		opt(a)
	}

	if a.name == "" {
		if t.Name() == "" {
			return nil, fmt.Errorf("baldr: cannot derive an API name from an unnamed resource type; use WithName")
		}
		a.name = strings.ToLower(t.Name()) + "s"
	}

	if a.declared == nil {
		a.declared = detectCapabilities(impl)
	}

	table, err := a.buildTable()
	if err != nil {
		return nil, err
	}
	a.table = table

	routes, err := a.buildRoutes()
	if err != nil {
		return nil, err
	}
	a.routes = routes

	return a, nil
}

// Name returns the API's URL name.
func (a *ResourceAPI) Name() string { return a.name }

// buildTable merges the declared capabilities and registered actions into
// one dispatch table, checking for conflicting bindings.
func (a *ResourceAPI) buildTable() (*dispatchTable, error) {
	table := newDispatchTable()

	for _, c := range a.declared {
		if err := a.bindCapability(table, c); err != nil {
			return nil, err
		}
	}

	for _, action := range a.listActions {
		if err := a.bindAction(table, action, kindList); err != nil {
			return nil, err
		}
	}
	for _, action := range a.detailActions {
		if err := a.bindAction(table, action, kindDetail); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (a *ResourceAPI) bindCapability(table *dispatchTable, c Capability) error {
	switch c {
	case List:
		table.allow(kindList, "get")
		if lister, ok := a.impl.(Lister); ok {
			return table.bind("get", kindList, a.listHandler(lister))
		}
	case Create:
		table.allow(kindList, "post")
		table.allow(kindList, "put")
		if creator, ok := a.impl.(Creator); ok {
			if err := table.bind("post", kindList, a.createHandler(creator, false)); err != nil {
				return err
			}
			return table.bind("put", kindList, a.createHandler(creator, true))
		}
	case Retrieve:
		table.allow(kindDetail, "get")
		if retriever, ok := a.impl.(Retriever); ok {
			return table.bind("get", kindDetail, func(r *http.Request, p Params) (any, error) {
				return retriever.RetrieveResource(r, p.ResourceID)
			})
		}
	case Update:
		table.allow(kindDetail, "post")
		table.allow(kindDetail, "put")
		if updater, ok := a.impl.(Updater); ok {
			if err := table.bind("post", kindDetail, a.updateHandler(updater, false)); err != nil {
				return err
			}
			return table.bind("put", kindDetail, a.updateHandler(updater, true))
		}
	case Delete:
		table.allow(kindDetail, "delete")
		if deleter, ok := a.impl.(Deleter); ok {
			return table.bind("delete", kindDetail, func(r *http.Request, p Params) (any, error) {
				return deleter.DeleteResource(r, p.ResourceID)
			})
		}
	default:
		return fmt.Errorf("baldr: unknown capability %q", c)
	}
	return nil
}

func (a *ResourceAPI) bindAction(table *dispatchTable, action actionBinding, base string) error {
	if !actionNamePattern.MatchString(action.name) {
		return fmt.Errorf("baldr: invalid action name %q", action.name)
	}
	if action.fn == nil {
		return fmt.Errorf("baldr: action %q has no handler", action.name)
	}

	kind := action.name + "_" + base
	for _, verb := range action.verbs {
		table.allow(kind, verb)
		if err := table.bind(verb, kind, handlerFunc(action.fn)); err != nil {
			return err
		}
	}
	return nil
}

func (a *ResourceAPI) listHandler(lister Lister) handlerFunc {
	return func(r *http.Request, _ Params) (any, error) {
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			return nil, err
		}
		limit, err := queryInt(r, "limit", 50)
		if err != nil {
			return nil, err
		}

		objects, err := lister.ListResources(r, offset, limit)
		if err != nil {
			return nil, err
		}
		return NewListing(objects, limit, offset), nil
	}
}

func (a *ResourceAPI) createHandler(creator Creator, complete bool) handlerFunc {
	return func(r *http.Request, _ Params) (any, error) {
		resource, err := a.DecodeResource(r)
		if err != nil {
			return nil, err
		}
		return creator.CreateResource(r, resource, complete)
	}
}

func (a *ResourceAPI) updateHandler(updater Updater, complete bool) handlerFunc {
	return func(r *http.Request, p Params) (any, error) {
		resource, err := a.DecodeResource(r)
		if err != nil {
			return nil, err
		}
		return updater.UpdateResource(r, p.ResourceID, resource, complete)
	}
}

// DecodeResource reads the request body and decodes it into a new instance
// of the API's resource type using the codec negotiated for the request.
// A body the codec cannot parse is a ValidationError (400).
func (a *ResourceAPI) DecodeResource(r *http.Request) (any, error) {
	codec, ok := RequestCodec(r)
	if !ok {
		codec = a.codecs.Default()
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	v := reflect.New(a.resourceType).Interface()
	if len(data) == 0 {
		return v, nil
	}
	if err := codec.Decode(data, v); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return v, nil
}

// queryInt reads an integer query parameter, returning a ValidationError
// for unparseable values.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{
			Message: fmt.Sprintf("invalid %s value %q", name, raw),
			Fields:  map[string][]string{name: {"must be an integer"}},
		}
	}
	return n, nil
}
