package builder

import "maps"

// Params is a flat parameter mapping. It is used for per-content metadata,
// caller-supplied extra parameters and the final rendering context alike.
type Params map[string]string

// Reserved keys present in every content mapping.
const (
	KeyDate        = "date"
	KeySlug        = "slug"
	KeyContent     = "content"
	KeyRFC2822Date = "rfc_2822_date"
	KeySummary     = "summary"
	KeyRender      = "render"
)

// Get returns the value for key and whether it was present.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Clone returns a shallow copy; a nil receiver yields an empty mapping.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Merge returns a new mapping holding p overlaid with over. Keys in over win.
func (p Params) Merge(over Params) Params {
	out := make(Params, len(p)+len(over))
	maps.Copy(out, p)
	maps.Copy(out, over)
	return out
}
