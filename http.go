package blocklog

import (
	"net/http"
	"strings"
)

// HTTPInfo is the structural HTTP view attached to an event under the
// request or response field. Every attribute is optional; the formatter
// reads only what is present. Pointer fields survive the event round
// trip with presence intact.
type HTTPInfo struct {
	StatusCode *int              `json:"status_code,omitempty"`
	Method     *string           `json:"method,omitempty"`
	URL        *string           `json:"url,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       *string           `json:"body,omitempty"`
	Text       *string           `json:"text,omitempty"`
}

// RequestInfo captures the loggable view of an outgoing or incoming
// request. The body is deliberately not consumed; use WithBody when a
// caller already holds it.
func RequestInfo(r *http.Request) *HTTPInfo {
	if r == nil {
		return &HTTPInfo{}
	}
	info := &HTTPInfo{
		Method:  strPtr(r.Method),
		Headers: flattenHeaders(r.Header),
	}
	if r.URL != nil {
		info.URL = strPtr(r.URL.String())
	}
	return info
}

// ResponseInfo captures the loggable view of a received response.
func ResponseInfo(r *http.Response) *HTTPInfo {
	if r == nil {
		return &HTTPInfo{}
	}
	code := r.StatusCode
	info := &HTTPInfo{
		StatusCode: &code,
		Headers:    flattenHeaders(r.Header),
	}
	if r.Request != nil {
		info.Method = strPtr(r.Request.Method)
		if r.Request.URL != nil {
			info.URL = strPtr(r.Request.URL.String())
		}
	}
	return info
}

// WithBody attaches an already-read body to the view.
func (h *HTTPInfo) WithBody(body string) *HTTPInfo {
	h.Body = &body
	return h
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
