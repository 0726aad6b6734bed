package observability

import "sync/atomic"

// slot holds the registered implementation of one hook interface.
type slot[T any] struct {
	v    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }

func (s *slot[T]) reset() { s.v.Store(nil) }

var (
	pipelineSlot = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetPipelineHooks registers h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op defaults.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
