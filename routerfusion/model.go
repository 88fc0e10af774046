package routerfusion

import "encoding/json"

// Request is the inbound GraphQL request body.
type Request struct {
	Query     string                 `json:"query" validate:"required"`
	Variables map[string]interface{} `json:"variables"`
}

// Payload returns the body forwarded upstream; absent variables become an
// empty object.
func (r Request) Payload() Request {
	if r.Variables == nil {
		r.Variables = map[string]interface{}{}
	}

	return r
}

// Response is the upstream GraphQL response. Data and Errors are kept
// verbatim; Errors may be any JSON value.
type Response struct {
	Data   json.RawMessage
	Errors json.RawMessage
}

// HasErrors reports whether the upstream errors value is a non-empty array or
// a non-empty string.
func (r *Response) HasErrors() bool {
	var list []json.RawMessage
	if err := json.Unmarshal(r.Errors, &list); err == nil {
		return len(list) > 0
	}

	var s string
	if err := json.Unmarshal(r.Errors, &s); err == nil {
		return s != ""
	}

	return false
}

// ResultErrors returns the errors value echoed back on success. Absent, null,
// false, empty string and zero values read as null.
func (r *Response) ResultErrors() json.RawMessage {
	var v interface{}
	if err := json.Unmarshal(r.Errors, &v); err != nil {
		return nil
	}

	switch e := v.(type) {
	case nil:
		return nil
	case bool:
		if !e {
			return nil
		}
	case string:
		if e == "" {
			return nil
		}
	case float64:
		if e == 0 {
			return nil
		}
	}

	return r.Errors
}

// Result is the success body returned to the caller.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}
