package carrier

import "encoding/json"

// CompositeRequest is the carrier's batch envelope. Each call runs in order on
// the carrier side; ${var} references in later URIs and bodies resolve against
// vars captured from earlier responses.
type CompositeRequest struct {
	Requests []CompositeCall `json:"requests"`
}

type CompositeCall struct {
	Method string         `json:"method"`
	URI    string         `json:"uri"`
	Body   map[string]any `json:"body,omitempty"`
	Vars   []CompositeVar `json:"vars,omitempty"`
}

// CompositeVar captures a JSONPath value from the call's response for use in
// subsequent calls of the same envelope.
type CompositeVar struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// CompositeResponse mirrors the envelope the carrier returns: one sub-response
// per request, in request order. The outer HTTP call can succeed while
// individual sub-responses fail.
type CompositeResponse struct {
	Responses []CompositeSubResponse `json:"responses"`
}

type CompositeSubResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
}
