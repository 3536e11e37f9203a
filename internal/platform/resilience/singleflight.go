package resilience

import "sync"

// SingleFlight collapses concurrent duplicate calls so one upstream
// request serves every caller asking for the same key. Sync runs fan
// out per entity and often ask a provider for the same page; without
// collapsing, a burst of triggers multiplies upstream load.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

// flightResult carries the outcome to every waiter once done closes.
type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per key across concurrent callers. The third return
// reports whether this caller joined an in-progress call instead of
// running fn itself.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flightResult)
	}
	if existing, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-existing.done
		return existing.val, existing.err, true
	}

	res := &flightResult{done: make(chan struct{})}
	g.inflight[key] = res
	g.mu.Unlock()

	res.val, res.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(res.done)

	return res.val, res.err, false
}
