package ports

import (
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
)

type LifecycleMetrics interface {
	RecordTransition(from, to domain.LifecycleState)
	RecordProbe(result domain.ReadinessResult, duration time.Duration)
	RecordLaunch(duration time.Duration, err error)
}

type NoopLifecycleMetrics struct{}

func (NoopLifecycleMetrics) RecordTransition(domain.LifecycleState, domain.LifecycleState) {}

func (NoopLifecycleMetrics) RecordProbe(domain.ReadinessResult, time.Duration) {}

func (NoopLifecycleMetrics) RecordLaunch(time.Duration, error) {}
