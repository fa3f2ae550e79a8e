package whitelist

import "strings"

// Filter decides which geofence names participate in reconciliation. It holds
// an immutable set of base site codes loaded once at startup; each code is also
// accepted with an " ext" or " ext." suffix, and any form may carry one
// trailing dot.
type Filter struct {
	codes map[string]struct{}
}

// New builds a Filter from the configured base codes. Codes are trimmed;
// empty entries are ignored.
func New(codes []string) *Filter {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return &Filter{codes: set}
}

// Permitted reports whether a raw geofence name matches the whitelist.
// Normalization order: trim whitespace, strip one trailing dot, then accept
// either a base code or a base code + " ext".
func (f *Filter) Permitted(raw string) bool {
	name := strings.TrimSpace(raw)
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return false
	}

	if _, ok := f.codes[name]; ok {
		return true
	}

	base := strings.TrimSuffix(name, " ext")
	if base == name {
		return false
	}
	_, ok := f.codes[base]
	return ok
}

// Size returns the number of base codes loaded.
func (f *Filter) Size() int {
	return len(f.codes)
}
