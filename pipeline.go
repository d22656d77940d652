package lattice

// Pipeline 一组有序的中间件工厂。管道本身长驻且并发安全；每个
// 请求到来时通过 construct 生成一批全新的中间件实例，实例只为
// 这一个请求服务，彼此之间互不可见。
type Pipeline struct {
	factories []NewMiddleware
}

// construct creates fresh middleware instances, one per factory, in the
// order they were added. A factory error aborts the whole request before
// any middleware runs.
func (p *Pipeline) construct() ([]Middleware, error) {
	instances := make([]Middleware, 0, len(p.factories))
	for _, f := range p.factories {
		m, err := f.NewMiddleware()
		if err != nil {
			return nil, err
		}
		instances = append(instances, m)
	}
	return instances, nil
}

// PipelineBuilder assembles a Pipeline. Ordering is significant: the first
// middleware added sits outermost in the onion.
type PipelineBuilder struct {
	factories []NewMiddleware
}

// NewPipeline creates an empty PipelineBuilder.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{}
}

// Add appends a middleware factory to the pipeline.
func (b *PipelineBuilder) Add(nm NewMiddleware) *PipelineBuilder {
	b.factories = append(b.factories, nm)
	return b
}

// AddFunc appends a stateless middleware function to the pipeline.
func (b *PipelineBuilder) AddFunc(m MiddlewareFunc) *PipelineBuilder {
	return b.Add(SharedMiddleware(m))
}

// Build freezes the builder into an immutable Pipeline.
func (b *PipelineBuilder) Build() *Pipeline {
	factories := make([]NewMiddleware, len(b.factories))
	copy(factories, b.factories)
	return &Pipeline{factories: factories}
}

// PipelineHandle is an opaque reference to a Pipeline within a
// PipelineSet. Handles stay valid across Finalize and are what routes
// store instead of pipeline pointers.
type PipelineHandle int

// EditablePipelineSet collects pipelines while the router is being drawn.
type EditablePipelineSet struct {
	pipelines []*Pipeline
}

// NewPipelineSet creates an empty EditablePipelineSet.
func NewPipelineSet() *EditablePipelineSet {
	return &EditablePipelineSet{}
}

// Add stores a pipeline and returns the handle that refers to it.
func (s *EditablePipelineSet) Add(p *Pipeline) PipelineHandle {
	s.pipelines = append(s.pipelines, p)
	return PipelineHandle(len(s.pipelines) - 1)
}

// Finalize freezes the set for concurrent use by the running router.
func (s *EditablePipelineSet) Finalize() *PipelineSet {
	pipelines := make([]*Pipeline, len(s.pipelines))
	copy(pipelines, s.pipelines)
	return &PipelineSet{pipelines: pipelines}
}

// PipelineSet 定型后的管道集合，运行期只读。
type PipelineSet struct {
	pipelines []*Pipeline
}

func (s *PipelineSet) pipeline(h PipelineHandle) *Pipeline {
	return s.pipelines[h]
}

// PipelineChain is an ordered list of pipeline handles. The first
// pipeline's first middleware is the outermost layer of the onion; the
// handler sits at the centre. Chains compose by appending, so a scope that
// extends its parent's chain wraps its routes in the parent's pipelines
// first.
type PipelineChain []PipelineHandle

// Append returns a new chain with h added innermost. The receiver is not
// modified, sibling scopes extend the same parent chain independently.
func (c PipelineChain) Append(h PipelineHandle) PipelineChain {
	out := make(PipelineChain, len(c), len(c)+1)
	copy(out, c)
	return append(out, h)
}

// call constructs fresh middleware instances for every pipeline in the
// chain and runs the request through them, innermost call being f.
func (c PipelineChain) call(set *PipelineSet, s *State, f HandlerFunc) (*Response, error) {
	var instances []Middleware
	for _, h := range c {
		ms, err := set.pipeline(h).construct()
		if err != nil {
			return nil, err
		}
		instances = append(instances, ms...)
	}

	next := f
	for i := len(instances) - 1; i >= 0; i-- {
		m, inner := instances[i], next
		next = func(s *State) (*Response, error) {
			return m.Call(s, inner)
		}
	}
	return next(s)
}

// SinglePipeline wraps one pipeline into the chain and set expected by
// BuildRouter, for the common case of a single application pipeline.
func SinglePipeline(p *Pipeline) (PipelineChain, *PipelineSet) {
	editable := NewPipelineSet()
	h := editable.Add(p)
	return PipelineChain{h}, editable.Finalize()
}
