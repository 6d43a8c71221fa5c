package state

// Response is the received HTTP response supplied to test-type runs.
// Scripts get read-only access; the engine never writes to it.
type Response struct {
	StatusCode int               `json:"status_code"`
	StatusText string            `json:"status_text"`
	TimeMS     float64           `json:"response_time_ms"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// HeaderMap returns a copy of the response headers so callers can hand it
// to a script without aliasing the original.
func (r *Response) HeaderMap() map[string]string {
	m := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		m[k] = v
	}
	return m
}
