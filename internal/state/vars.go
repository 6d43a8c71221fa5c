package state

// Map is a flat string map used for both the environment scope and the
// variable scope of a script run. Insertion order is irrelevant; keys are
// unique. The zero value is usable for reads but not for writes, so runs
// always start from Clone which returns a non-nil map.
type Map map[string]string

// Get returns the value for key and whether it was present.
func (m Map) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Set stores value under key.
func (m Map) Set(key, value string) {
	m[key] = value
}

// Unset removes key if present.
func (m Map) Unset(key string) {
	delete(m, key)
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Clone returns a non-nil deep copy of the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
