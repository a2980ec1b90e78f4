package baldr

// Listing wraps one page of results for a list response.
type Listing struct {
	Objects []any       `json:"objects" yaml:"objects"`
	Meta    ListingMeta `json:"meta" yaml:"meta"`
}

// ListingMeta describes the window of the listing. Count is the total
// number of resources, when the lister knows it.
type ListingMeta struct {
	Limit  int  `json:"limit" yaml:"limit"`
	Offset int  `json:"offset" yaml:"offset"`
	Count  *int `json:"count,omitempty" yaml:"count,omitempty"`
}

// NewListing builds a Listing for the given page of objects. A nil page
// is normalized to an empty slice so objects always encodes as a sequence.
func NewListing(objects []any, limit, offset int) *Listing {
	if objects == nil {
		objects = []any{}
	}
	return &Listing{
		Objects: objects,
		Meta:    ListingMeta{Limit: limit, Offset: offset},
	}
}

// WithCount records the total resource count on the listing.
func (l *Listing) WithCount(count int) *Listing {
	l.Meta.Count = &count
	return l
}

// Response pairs a resource with an explicit HTTP status. Handlers that
// are happy with the default status shaping (200 for a resource, 204 for
// nil) return the resource bare instead.
type Response struct {
	Resource any
	Status   int
}
