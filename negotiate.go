package baldr

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// ContentTypeResolver is one step in the chain that picks a wire content
// type for a request. A resolver returns the chosen content type, or ""
// when it has no opinion and the next resolver should be tried.
type ContentTypeResolver interface {
	ResolveContentType(r *http.Request, codecs *CodecRegistry) string
}

// DefaultResolvers returns the standard resolver chain: Accept header,
// then Content-Type header, then the given fallback content type.
func DefaultResolvers(fallback string) []ContentTypeResolver {
	return []ContentTypeResolver{
		AcceptHeaderResolver{},
		ContentTypeHeaderResolver{},
		DefaultContentTypeResolver{ContentType: fallback},
	}
}

// resolveContentType runs the chain in order; the first non-empty result wins.
func resolveContentType(resolvers []ContentTypeResolver, r *http.Request, codecs *CodecRegistry) string {
	for _, resolver := range resolvers {
		if ct := resolver.ResolveContentType(r, codecs); ct != "" {
			return ct
		}
	}
	return ""
}

// AcceptHeaderResolver picks a content type from the request's Accept
// header, honoring quality values and wildcards: "*/*" maps to the
// registry's default codec, "type/*" to the first registered codec of
// that type, and q=0 marks an entry as not acceptable. At equal quality
// an exact match beats a wildcard. An absent Accept header yields no
// opinion.
type AcceptHeaderResolver struct{}

func (AcceptHeaderResolver) ResolveContentType(r *http.Request, codecs *CodecRegistry) string {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return ""
	}

	best := ""
	bestQ := -1.0
	bestWild := false

	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}

		candidate, wild := matchMediaType(mediaType, codecs)
		if candidate == "" {
			continue
		}
		if q > bestQ || (q == bestQ && bestWild && !wild) {
			best, bestQ, bestWild = candidate, q, wild
		}
	}

	return best
}

// matchMediaType maps one Accept entry onto a registered content type,
// reporting whether the entry was a wildcard.
func matchMediaType(mediaType string, codecs *CodecRegistry) (string, bool) {
	if mediaType == "*/*" {
		if def := codecs.Default(); def != nil {
			return def.ContentType(), true
		}
		return "", true
	}
	if mainType, ok := strings.CutSuffix(mediaType, "/*"); ok {
		for _, ct := range codecs.ContentTypes() {
			if strings.HasPrefix(ct, mainType+"/") {
				return ct, true
			}
		}
		return "", true
	}
	if _, ok := codecs.Resolve(mediaType); ok {
		return mediaType, false
	}
	return "", false
}

// ContentTypeHeaderResolver uses the request's declared Content-Type when
// it matches a registered codec.
type ContentTypeHeaderResolver struct{}

func (ContentTypeHeaderResolver) ResolveContentType(r *http.Request, codecs *CodecRegistry) string {
	header := r.Header.Get("Content-Type")
	if header == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	if _, ok := codecs.Resolve(mediaType); ok {
		return mediaType
	}
	return ""
}

// DefaultContentTypeResolver unconditionally yields a configured content
// type. It is the terminal step of the default chain; an empty ContentType
// disables the fallback, making negotiation strict.
type DefaultContentTypeResolver struct {
	ContentType string
}

func (d DefaultContentTypeResolver) ResolveContentType(*http.Request, *CodecRegistry) string {
	return d.ContentType
}
