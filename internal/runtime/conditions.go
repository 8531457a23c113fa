package runtime

import (
	"time"

	"github.com/aretw0/routine/pkg/domain"
)

// After holds once the run clock reached d.
func (e *Engine) After(d time.Duration) domain.Condition {
	return domain.Predicate(func() bool { return e.auto.HasElapsed(d) })
}

// Before holds while the run clock is below d.
func (e *Engine) Before(d time.Duration) domain.Condition {
	return domain.Predicate(func() bool { return !e.auto.HasElapsed(d) })
}

// DefaultAfter holds once the default clock reached d.
func (e *Engine) DefaultAfter(d time.Duration) domain.Condition {
	return domain.Predicate(func() bool { return e.deflt.HasElapsed(d) })
}
