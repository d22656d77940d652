package lattice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/google/uuid"
)

// HeaderXRequestID 请求标识报头
const HeaderXRequestID = "X-Request-Id"

// State 单个请求的状态容器，携带请求元数据和一个以类型为键的
// 异构存储。它随请求创建、随响应销毁，整个处理链对它拥有独占
// 的所有权，因此不加锁。
//
// 每个逻辑类型同一时间最多保存一个值，重复写入会覆盖旧值。
// 读写使用包级泛型函数 Put、Get、Take 等。
type State struct {
	method    string
	uri       *url.URL
	header    http.Header
	body      io.ReadCloser
	requestID string
	clientIP  string
	ctx       context.Context

	data map[reflect.Type]any
}

// NewState 根据请求元数据创建一个全新的状态容器。
// 若报头中携带了 X-Request-Id 则沿用，否则生成一个新的标识。
func NewState(method string, uri *url.URL, header http.Header) *State {
	if header == nil {
		header = make(http.Header)
	}
	id := header.Get(HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	return &State{
		method:    method,
		uri:       uri,
		header:    header,
		requestID: id,
		ctx:       context.Background(),
		data:      make(map[reflect.Type]any),
	}
}

// NewStateForRequest 从 `*http.Request` 创建状态容器，同时装入
// 已切分的请求路径，供路由树遍历使用。
func NewStateForRequest(r *http.Request) *State {
	s := NewState(r.Method, r.URL, r.Header)
	s.body = r.Body
	s.clientIP = r.RemoteAddr
	s.ctx = r.Context()
	Put(s, NewPathSegments(r.URL.EscapedPath()))
	return s
}

// Method returns the HTTP method of the request.
func (s *State) Method() string { return s.method }

// URL returns the request URI.
func (s *State) URL() *url.URL { return s.uri }

// Header returns the request headers.
func (s *State) Header() http.Header { return s.header }

// Body returns the request body, which may be nil.
func (s *State) Body() io.ReadCloser { return s.body }

// SetBody replaces the request body.
func (s *State) SetBody(body io.ReadCloser) { s.body = body }

// RequestID returns the unique identifier assigned to this request.
func (s *State) RequestID() string { return s.requestID }

// ClientIP returns the remote network address of the request, when known.
func (s *State) ClientIP() string { return s.clientIP }

// SetClientIP records the remote network address of the request.
func (s *State) SetClientIP(addr string) { s.clientIP = addr }

// Context returns the context associated with the request.
func (s *State) Context() context.Context { return s.ctx }

// SetContext replaces the context associated with the request. Used by
// middleware that derive contexts (tracing, deadlines) for downstream work.
func (s *State) SetContext(ctx context.Context) { s.ctx = ctx }

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Put stores a value in the state, keyed by its static type.
// Any existing value of the same type is overwritten.
func Put[T any](s *State, value T) {
	s.data[typeKey[T]()] = value
}

// Get retrieves the value of type T, reporting whether it was present.
func Get[T any](s *State) (T, bool) {
	v, ok := s.data[typeKey[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustGet retrieves the value of type T, panicking when absent. Reserved
// for values the caller has proven to exist earlier in the chain.
func MustGet[T any](s *State) T {
	v, ok := Get[T](s)
	if !ok {
		panic(fmt.Sprintf("lattice: state has no value of type %v", typeKey[T]()))
	}
	return v
}

// Take removes and returns the value of type T, reporting whether it was
// present. Subsequent Get calls for the same type will fail until a new
// value is stored.
func Take[T any](s *State) (T, bool) {
	v, ok := Get[T](s)
	if ok {
		delete(s.data, typeKey[T]())
	}
	return v, ok
}

// Has reports whether a value of type T is stored in the state.
func Has[T any](s *State) bool {
	_, ok := s.data[typeKey[T]()]
	return ok
}
