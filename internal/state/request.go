package state

// Header represents a single header key-value pair. Order is preserved
// across mutations; names are unique within a request.
type Header struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Request is the pending HTTP request a script run observes. Pre-request
// scripts mutate their working copy of it; test scripts see it read-mostly
// because the request has already been sent.
type Request struct {
	Method  string   `yaml:"method" json:"method"`
	URL     string   `yaml:"url" json:"url"`
	Headers []Header `yaml:"headers" json:"headers"`
	Body    string   `yaml:"body" json:"body"`
}

// SetHeader adds a header, replacing the value in place when the name
// already exists so insertion order is kept stable.
func (r *Request) SetHeader(name, value string) {
	for i := range r.Headers {
		if r.Headers[i].Name == name {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// RemoveHeader deletes the header with the given name if present.
func (r *Request) RemoveHeader(name string) {
	for i := range r.Headers {
		if r.Headers[i].Name == name {
			r.Headers = append(r.Headers[:i], r.Headers[i+1:]...)
			return
		}
	}
}

// GetHeader returns the value for name and whether it was present.
func (r *Request) GetHeader(name string) (string, bool) {
	for i := range r.Headers {
		if r.Headers[i].Name == name {
			return r.Headers[i].Value, true
		}
	}
	return "", false
}

// HeaderMap returns the headers as a fresh plain map.
func (r *Request) HeaderMap() map[string]string {
	m := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		m[h.Name] = h.Value
	}
	return m
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	out := r
	if r.Headers != nil {
		out.Headers = make([]Header, len(r.Headers))
		copy(out.Headers, r.Headers)
	}
	return out
}
