// Package registry holds the static set of monitored URLs, organised into
// named groups, and the rules for matching a user-submitted URL against it.
//
// A [Registry] is immutable after construction. All getters return copies,
// so a registry can be shared freely between the sweep scheduler and HTTP
// handlers without synchronisation.
//
//	reg, err := registry.New([]registry.Group{
//	    {Name: "BBC", URLs: []string{"https://www.bbc.co.uk", "https://www.bbc.co.uk/404"}},
//	    {Name: "Google", URLs: []string{"https://www.google.com"}},
//	})
//
//	found, normalized := reg.Lookup("  WWW.BBC.CO.UK ")
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Group is a named, ordered list of URLs.
type Group struct {
	Name string
	URLs []string
}

// Registry maps group names to the URLs they contain.
//
// Groups keep the order they were supplied in. The flattened URL list is
// derived once at construction: it is the concatenation of every group's
// URLs in group order, with repeated URLs collapsed to their first occurrence.
type Registry struct {
	groups []Group
	urls   []string
	owners map[string][]string
}

// New creates a [Registry] from the given groups.
//
// Returns an error if no groups are given, a group name is empty or
// repeated, a group has no URLs, or a URL is empty.
func New(groups []Group) (*Registry, error) {
	if len(groups) == 0 {
		return nil, errors.New("at least one group is required")
	}

	r := &Registry{
		groups: make([]Group, 0, len(groups)),
		owners: make(map[string][]string),
	}

	seen := make(map[string]struct{}, len(groups))
	for i, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("groups[%d]: name cannot be empty", i)
		}
		if _, dup := seen[g.Name]; dup {
			return nil, fmt.Errorf("duplicate group name: %q", g.Name)
		}
		seen[g.Name] = struct{}{}

		if len(g.URLs) == 0 {
			return nil, fmt.Errorf("group %q: at least one url is required", g.Name)
		}

		urls := make([]string, len(g.URLs))
		for j, u := range g.URLs {
			if strings.TrimSpace(u) == "" {
				return nil, fmt.Errorf("group %q: urls[%d] cannot be empty", g.Name, j)
			}
			urls[j] = u

			owners, known := r.owners[u]
			if !known {
				r.urls = append(r.urls, u)
			}
			// a group listing the same url twice still owns it once
			if len(owners) == 0 || owners[len(owners)-1] != g.Name {
				r.owners[u] = append(owners, g.Name)
			}
		}

		r.groups = append(r.groups, Group{Name: g.Name, URLs: urls})
	}

	return r, nil
}

// FromMap creates a [Registry] from a group name to URL list mapping.
//
// Go maps are unordered, so groups are sorted by name.
func FromMap(m map[string][]string) (*Registry, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, Group{Name: name, URLs: m[name]})
	}
	return New(groups)
}

// Groups returns a copy of the registry's groups in order.
func (r *Registry) Groups() []Group {
	cp := make([]Group, len(r.groups))
	for i, g := range r.groups {
		cp[i] = Group{Name: g.Name, URLs: append([]string(nil), g.URLs...)}
	}
	return cp
}

// URLs returns a copy of the flattened URL list.
func (r *Registry) URLs() []string {
	return append([]string(nil), r.urls...)
}

// Len returns the number of distinct URLs in the registry.
func (r *Registry) Len() int {
	return len(r.urls)
}

// Contains reports whether url is in the flattened URL list.
// The comparison is exact; see [Registry.Lookup] for submitted input.
func (r *Registry) Contains(url string) bool {
	_, ok := r.owners[url]
	return ok
}

// GroupsOf returns the names of the groups that list url, in group order.
// Returns nil for a URL the registry does not know.
func (r *Registry) GroupsOf(url string) []string {
	owners, ok := r.owners[url]
	if !ok {
		return nil
	}
	return append([]string(nil), owners...)
}

// Lookup normalizes a submitted URL with [Normalize] and reports whether the
// result is a registered URL.
//
// The normalized string is returned whether or not it was found; callers
// use it for display and for reading the URL's current status.
func (r *Registry) Lookup(submitted string) (found bool, normalized string) {
	normalized = Normalize(submitted)
	return r.Contains(normalized), normalized
}
