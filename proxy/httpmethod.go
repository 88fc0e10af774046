package proxy

import "fmt"

// HttpMethod is an enum of the standard Http Methods.
type HttpMethod int

const (
	GET HttpMethod = iota
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var httpMethodNames = [...]string{
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

// String returns the wire name of the method, e.g. "POST".
func (m HttpMethod) String() string {
	if m < 0 || int(m) >= len(httpMethodNames) {
		return fmt.Sprintf("HttpMethod(%d)", int(m))
	}

	return httpMethodNames[m]
}

// ParseHttpMethod returns the HttpMethod for the given wire name.
func ParseHttpMethod(s string) (HttpMethod, error) {
	for m, name := range httpMethodNames {
		if name == s {
			return HttpMethod(m), nil
		}
	}

	return 0, fmt.Errorf("unknown http method '%s'", s)
}
