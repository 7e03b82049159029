package httpclient

import "strings"

// Request is one outbound backend call.
type Request struct {
	Method string
	// Path is joined to Config.BaseURL unless it is already absolute.
	Path string
	// Host replaces the Host header. Routing proxies select the backend
	// from it while the connection goes to the URL's address.
	Host string
	// Headers override Config.Headers key by key.
	Headers map[string]string
	Query   map[string]string
	// Body is sent as is. ContentType labels it and defaults to JSON.
	Body        []byte
	ContentType string
}

// Response holds a fully read backend answer. Headers keep the first value
// of each canonical key.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

func (r *Response) IsSuccess() bool { return r.StatusCode/100 == 2 }

// IsJSON reports whether the response declares a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.Headers["Content-Type"]), "json")
}
