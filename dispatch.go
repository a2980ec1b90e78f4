package baldr

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

const (
	kindList   = "list"
	kindDetail = "detail"
)

// handlerFunc is one bound handler in the dispatch table.
type handlerFunc func(r *http.Request, p Params) (any, error)

// dispatchTable is the merged result of capability composition: the
// allowed verbs per request kind and the handler bound to each verb/kind
// pair. Built once at construction, read-only afterwards.
type dispatchTable struct {
	allowed  map[string][]string
	handlers map[string]handlerFunc
}

func newDispatchTable() *dispatchTable {
	return &dispatchTable{
		allowed:  make(map[string][]string),
		handlers: make(map[string]handlerFunc),
	}
}

// allow appends a verb to the kind's allowed set if not already present.
func (t *dispatchTable) allow(kind, verb string) {
	if !slices.Contains(t.allowed[kind], verb) {
		t.allowed[kind] = append(t.allowed[kind], verb)
	}
}

// bind attaches a handler to a verb/kind pair, rejecting duplicates.
func (t *dispatchTable) bind(verb, kind string, fn handlerFunc) error {
	key := verb + "_" + kind
	if _, ok := t.handlers[key]; ok {
		return fmt.Errorf("baldr: conflicting handler binding for %s", key)
	}
	t.handlers[key] = fn
	return nil
}

// dispatch routes one request of the given kind through the machine:
// method check, authorization, handler lookup, pre-hook, execution,
// post-hook. Failures surface as typed errors for the view wrapper to map.
func (a *ResourceAPI) dispatch(r *http.Request, kind string, p Params) (any, error) {
	allowed, ok := a.table.allowed[kind]
	if !ok || len(allowed) == 0 {
		// No capability ever contributed to this kind: the route was never
		// meant to exist, which is a 404 rather than a 405.
		return nil, NotFound("`%s` not found.", a.name)
	}

	verb := strings.ToLower(r.Method)
	if !slices.Contains(allowed, verb) {
		return nil, methodNotAllowed(allowed)
	}

	r = withKind(r, kind)

	if authorizer, ok := a.impl.(Authorizer); ok {
		if err := authorizer.Authorize(r, p); err != nil {
			return nil, err
		}
	}

	handler, ok := a.table.handlers[verb+"_"+kind]
	if !ok {
		// The verb was declared allowed but no delegate backs it.
		return nil, ErrNotImplemented
	}

	if pre, ok := a.impl.(PreDispatcher); ok {
		if replacement := pre.PreDispatch(r, p); replacement != nil {
			p = *replacement
		}
	}

	result, err := handler(r, p)
	if err != nil {
		return nil, err
	}

	if post, ok := a.impl.(PostDispatcher); ok {
		result = post.PostDispatch(r, result)
	}
	return result, nil
}
