package baldr

import (
	"regexp"
	"strings"
)

// route pairs one compiled URL shape with the request kind it produces.
// The resource name segment matches case-insensitively and the trailing
// slash is optional.
type route struct {
	pattern *regexp.Regexp
	base    string
	action  bool
}

// buildRoutes compiles the API's URL shapes: list, detail, and — when any
// actions are registered — the list-action and detail-action shapes. Order
// matters: the detail pattern is tried before the list-action pattern so a
// numeric segment dispatches as a detail request.
func (a *ResourceAPI) buildRoutes() ([]route, error) {
	name := `(?i:` + regexp.QuoteMeta(strings.ToLower(a.prefix+a.name)) + `)`
	id := `(?P<resource_id>` + a.idPattern + `)`
	action := `(?P<action>[-\w]+)`

	type shape struct {
		suffix string
		base   string
		action bool
	}

	shapes := []shape{
		{"", kindList, false},
		{"/" + id, kindDetail, false},
	}
	if len(a.listActions) > 0 || len(a.detailActions) > 0 {
		shapes = append(shapes,
			shape{"/" + action, kindList, true},
			shape{"/" + id + "/" + action, kindDetail, true},
		)
	}

	routes := make([]route, 0, len(shapes))
	for _, shape := range shapes {
		pattern, err := regexp.Compile(`^` + name + shape.suffix + `/?$`)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route{pattern: pattern, base: shape.base, action: shape.action})
	}
	return routes, nil
}

// match extracts route parameters from a path, reporting whether the
// route's pattern matched.
func (rt route) match(path string) (Params, bool) {
	m := rt.pattern.FindStringSubmatch(path)
	if m == nil {
		return Params{}, false
	}

	var p Params
	for i, name := range rt.pattern.SubexpNames() {
		switch name {
		case "resource_id":
			p.ResourceID = m[i]
		case "action":
			p.Action = m[i]
		}
	}
	return p, true
}

// kind computes the dispatch kind for a matched request.
func (rt route) kind(p Params) string {
	if rt.action {
		return p.Action + "_" + rt.base
	}
	return rt.base
}
