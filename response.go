package lattice

import (
	"net/http"
	"strconv"
)

// Response 处理请求后得到的完整响应值。它在处理链内作为普通值
// 传递和修改，最终由服务边界写回连接。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// NewResponseWith creates a response with a body and content type.
func NewResponseWith(status int, contentType string, body []byte) *Response {
	res := NewResponse(status)
	res.Header.Set("Content-Type", contentType)
	res.Body = body
	return res
}

// TextResponse creates a text/plain response.
func TextResponse(status int, body string) *Response {
	return NewResponseWith(status, "text/plain; charset=utf-8", []byte(body))
}

// Write writes the response to w. A missing Content-Length is filled in
// from the body.
func (r *Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for k, vs := range r.Header {
		h[k] = vs
	}
	if h.Get("Content-Length") == "" {
		h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	w.WriteHeader(r.Status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

// ResponseExtender mutates a response immediately before the Router
// returns it, e.g. to attach a body to an otherwise empty 404.
type ResponseExtender interface {
	ExtendResponse(s *State, res *Response)
}

// ResponseExtenderFunc adapts an ordinary function to the ResponseExtender
// interface.
type ResponseExtenderFunc func(s *State, res *Response)

// ExtendResponse implements ResponseExtender.
func (f ResponseExtenderFunc) ExtendResponse(s *State, res *Response) {
	f(s, res)
}

// ResponseFinalizer applies status-code-keyed extenders to every response
// the Router is about to return. Responses with unregistered status codes
// pass through untouched.
type ResponseFinalizer struct {
	extenders map[int]ResponseExtender
}

// Finalize runs the extender registered for the response's status, if any.
func (f *ResponseFinalizer) Finalize(s *State, res *Response) {
	if e, ok := f.extenders[res.Status]; ok {
		e.ExtendResponse(s, res)
	}
}

// ResponseFinalizerBuilder assembles a ResponseFinalizer.
type ResponseFinalizerBuilder struct {
	extenders map[int]ResponseExtender
}

// NewResponseFinalizerBuilder creates an empty builder.
func NewResponseFinalizerBuilder() *ResponseFinalizerBuilder {
	return &ResponseFinalizerBuilder{extenders: make(map[int]ResponseExtender)}
}

// Add registers an extender for a status code, replacing any previous one.
func (b *ResponseFinalizerBuilder) Add(status int, e ResponseExtender) {
	b.extenders[status] = e
}

// Finalize produces the immutable ResponseFinalizer.
func (b *ResponseFinalizerBuilder) Finalize() *ResponseFinalizer {
	return &ResponseFinalizer{extenders: b.extenders}
}
