package baldr

import (
	"context"
	"net/http"
)

type codecKey struct{}

type kindKey struct{}

// withCodec stores the negotiated codec on the request so capability
// handlers can decode the body with it.
func withCodec(r *http.Request, c Codec) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), codecKey{}, c))
}

// RequestCodec returns the codec negotiated for the request. Action
// handlers use it to decode request bodies themselves.
func RequestCodec(r *http.Request) (Codec, bool) {
	c, ok := r.Context().Value(codecKey{}).(Codec)
	return c, ok
}

// withKind records the dispatch kind on the request.
func withKind(r *http.Request, kind string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), kindKey{}, kind))
}

// RequestKind returns the dispatch kind for the request: "list", "detail",
// or the "{action}_list"/"{action}_detail" variant. It is set before the
// pre-dispatch hook runs.
func RequestKind(r *http.Request) (string, bool) {
	k, ok := r.Context().Value(kindKey{}).(string)
	return k, ok
}
