package baldr

import "net/http"

// Capability identifies one composable unit of API surface. Each declared
// capability contributes allowed verbs and handler bindings for one
// request kind when the API's dispatch table is built.
type Capability string

const (
	// List serves GET on the list URL, delegating to Lister.
	List Capability = "list"
	// Create serves POST and PUT on the list URL, delegating to Creator.
	Create Capability = "create"
	// Retrieve serves GET on the detail URL, delegating to Retriever.
	Retrieve Capability = "retrieve"
	// Update serves POST and PUT on the detail URL, delegating to Updater.
	Update Capability = "update"
	// Delete serves DELETE on the detail URL, delegating to Deleter.
	Delete Capability = "delete"
)

// Params carries the values extracted from the matched route.
type Params struct {
	ResourceID string
	Action     string
}

// Lister is the delegate for the List capability.
type Lister interface {
	// ListResources returns the page of resources starting at offset,
	// at most limit long.
	ListResources(r *http.Request, offset, limit int) ([]any, error)
}

// Creator is the delegate for the Create capability. complete is true for
// the idempotent-replace verb (PUT) and false for POST.
type Creator interface {
	CreateResource(r *http.Request, resource any, complete bool) (any, error)
}

// Retriever is the delegate for the Retrieve capability.
type Retriever interface {
	RetrieveResource(r *http.Request, id string) (any, error)
}

// Updater is the delegate for the Update capability. complete is true for
// the idempotent-replace verb (PUT) and false for POST.
type Updater interface {
	UpdateResource(r *http.Request, id string, resource any, complete bool) (any, error)
}

// Deleter is the delegate for the Delete capability.
type Deleter interface {
	DeleteResource(r *http.Request, id string) (any, error)
}

// ActionFunc handles a named action beyond CRUD — a sub-resource,
// aggregation, or custom operation. Detail actions receive the resource id
// in params.
type ActionFunc func(r *http.Request, params Params) (any, error)

// PreDispatcher is an optional hook on the implementation value. It runs
// after the handler is located and before it executes; a non-nil return
// replaces the parameter set for the handler call.
type PreDispatcher interface {
	PreDispatch(r *http.Request, params Params) *Params
}

// PostDispatcher is an optional hook on the implementation value. Its
// return value replaces the handler's result.
type PostDispatcher interface {
	PostDispatch(r *http.Request, result any) any
}

// Authorizer is an optional hook on the implementation value, evaluated
// after the method check and before handler lookup. Returning a
// PermissionError (or any error) fails the request.
type Authorizer interface {
	Authorize(r *http.Request, params Params) error
}

// implementsDelegate reports whether impl implements the delegate
// interface for the given capability.
func implementsDelegate(impl any, c Capability) bool {
	switch c {
	case List:
		_, ok := impl.(Lister)
		return ok
	case Create:
		_, ok := impl.(Creator)
		return ok
	case Retrieve:
		_, ok := impl.(Retriever)
		return ok
	case Update:
		_, ok := impl.(Updater)
		return ok
	case Delete:
		_, ok := impl.(Deleter)
		return ok
	}
	return false
}

// detectCapabilities returns the capabilities whose delegate interfaces
// impl implements, in a fixed order.
func detectCapabilities(impl any) []Capability {
	var caps []Capability
	for _, c := range []Capability{List, Create, Retrieve, Update, Delete} {
		if implementsDelegate(impl, c) {
			caps = append(caps, c)
		}
	}
	return caps
}
