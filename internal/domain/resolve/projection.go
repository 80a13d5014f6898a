package resolve

import (
	"fmt"
	"sort"
	"strings"
)

// Projection restricts which fields of a resolved document are returned.
// Include and Exclude are mutually exclusive; an empty projection returns
// the full document. The identifier is always retained.
type Projection struct {
	include []string
	exclude []string
}

// NewProjection validates and creates a Projection.
func NewProjection(include, exclude []string) (Projection, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return Projection{}, fmt.Errorf("projection cannot both include and exclude fields")
	}
	return Projection{include: include, exclude: exclude}, nil
}

// Include returns the inclusion field list.
func (p Projection) Include() []string { return p.include }

// Exclude returns the exclusion field list.
func (p Projection) Exclude() []string { return p.exclude }

// CacheKey returns a canonical string form. Two projections with the same
// CacheKey restrict documents identically, so their store queries can be
// coalesced.
func (p Projection) CacheKey() string {
	if p.IsEmpty() {
		return ""
	}
	if len(p.include) > 0 {
		return "i:" + strings.Join(sortedCopy(p.include), ",")
	}
	return "e:" + strings.Join(sortedCopy(p.exclude), ",")
}

func sortedCopy(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

// IsEmpty reports whether the projection returns full documents.
func (p Projection) IsEmpty() bool {
	return len(p.include) == 0 && len(p.exclude) == 0
}

// Apply returns a copy of fields restricted by the projection.
// Fields named in nested specs must be retained by the caller separately;
// Apply only handles the declared include/exclude lists.
func (p Projection) Apply(fields map[string]any) map[string]any {
	if p.IsEmpty() {
		return fields
	}
	out := make(map[string]any, len(fields))
	if len(p.include) > 0 {
		for _, name := range p.include {
			if v, ok := fields[name]; ok {
				out[name] = v
			}
		}
		return out
	}
	excluded := make(map[string]bool, len(p.exclude))
	for _, name := range p.exclude {
		excluded[name] = true
	}
	for k, v := range fields {
		if !excluded[k] {
			out[k] = v
		}
	}
	return out
}
