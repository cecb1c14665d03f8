package capability

// Manifest is the read-only allow/deny configuration. It is safe to share
// between goroutines.
type Manifest struct {
	allowed Set
	denied  Set
	source  string
}

// NewManifest copies allow and deny into an immutable manifest.
func NewManifest(allow, deny []Capability) *Manifest {
	return &Manifest{allowed: NewSet(allow...), denied: NewSet(deny...)}
}

// IsAllowed answers whether cap may be used.
//
// Deny short-circuits first; only then is membership in a non-empty allow
// list required. A nil manifest or an invalid capability is never allowed.
func (m *Manifest) IsAllowed(c Capability) bool {
	if m == nil || !c.Valid() {
		return false
	}
	if m.denied.Has(c) {
		return false
	}
	if m.allowed.Empty() {
		return false
	}
	return m.allowed.Has(c)
}

func (m *Manifest) Allowed() Set {
	if m == nil {
		return 0
	}
	return m.allowed
}

func (m *Manifest) Denied() Set {
	if m == nil {
		return 0
	}
	return m.denied
}

// Overlap lists capabilities present in both sets; deny wins for them.
func (m *Manifest) Overlap() Set {
	if m == nil {
		return 0
	}
	return m.allowed & m.denied
}

// Source is the file the manifest was loaded from, empty when built in code.
func (m *Manifest) Source() string {
	if m == nil {
		return ""
	}
	return m.source
}
