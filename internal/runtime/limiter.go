package runtime

import "golang.org/x/time/rate"

func (e *Engine) limiter(name string) *rate.Limiter {
	if lim, ok := e.limiters[name]; ok {
		return lim
	}
	lim := rate.NewLimiter(e.logLimit, e.logBurst)
	e.limiters[name] = lim
	return lim
}
