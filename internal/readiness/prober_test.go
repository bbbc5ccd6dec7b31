package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type probeRecorder struct {
	results []domain.ReadinessResult
}

func (r *probeRecorder) RecordTransition(domain.LifecycleState, domain.LifecycleState) {}
func (r *probeRecorder) RecordLaunch(time.Duration, error)                             {}
func (r *probeRecorder) RecordProbe(result domain.ReadinessResult, _ time.Duration) {
	r.results = append(r.results, result)
}

func TestProbeClassifiesHealth(t *testing.T) {
	cases := []struct {
		name   string
		status domain.HealthStatus
		want   domain.ReadinessResult
	}{
		{"green", domain.HealthGreen, domain.ReadinessReady},
		{"yellow", domain.HealthYellow, domain.ReadinessReady},
		{"red", domain.HealthRed, domain.ReadinessNotReady},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node := mocks.NewMockNode(t)
			node.EXPECT().ClusterHealth(mock.Anything, domain.HealthRequest{
				WaitForStatus: domain.HealthYellow,
				Timeout:       domain.DefaultProbeTimeout,
			}).Return(domain.HealthResponse{Status: tc.status}, nil).Once()

			recorder := &probeRecorder{}
			p := NewProber(0, nil, recorder, nil)

			assert.Equal(t, tc.want, p.Probe(context.Background(), node))
			assert.Equal(t, tc.want.IsReady(), p.State().IsReady())
			assert.Equal(t, []domain.ReadinessResult{tc.want}, recorder.results)
		})
	}
}

func TestProbeTimedOutYellowWaitIsStillReadyUnlessRed(t *testing.T) {
	node := mocks.NewMockNode(t)
	node.EXPECT().ClusterHealth(mock.Anything, mock.Anything).
		Return(domain.HealthResponse{Status: domain.HealthYellow, TimedOut: true}, nil)

	p := NewProber(time.Second, nil, nil, nil)
	assert.Equal(t, domain.ReadinessReady, p.Probe(context.Background(), node))
}

func TestProbeErrorIsNotReady(t *testing.T) {
	node := mocks.NewMockNode(t)
	node.EXPECT().ClusterHealth(mock.Anything, mock.Anything).
		Return(domain.HealthResponse{}, errors.New("connection refused"))

	p := NewProber(time.Second, nil, nil, nil)
	assert.Equal(t, domain.ReadinessNotReady, p.Probe(context.Background(), node))
}

func TestProbePanicIsNotReady(t *testing.T) {
	node := mocks.NewMockNode(t)
	node.EXPECT().ClusterHealth(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, domain.HealthRequest) (domain.HealthResponse, error) {
			panic("client torn down")
		})

	p := NewProber(time.Second, nil, nil, nil)
	assert.Equal(t, domain.ReadinessNotReady, p.Probe(context.Background(), node))
}

func TestProbeWithoutNodeIsNotReady(t *testing.T) {
	p := NewProber(time.Second, nil, nil, nil)
	assert.Equal(t, domain.ReadinessNotReady, p.Probe(context.Background(), nil))
}

func TestProbePassesDeadlineToNode(t *testing.T) {
	node := mocks.NewMockNode(t)
	node.EXPECT().ClusterHealth(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, req domain.HealthRequest) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
			assert.Equal(t, 50*time.Millisecond, req.Timeout)
		}).
		Return(domain.HealthResponse{Status: domain.HealthGreen}, nil)

	p := NewProber(50*time.Millisecond, nil, nil, nil)
	p.Probe(context.Background(), node)
}
