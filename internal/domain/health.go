package domain

import (
	"fmt"
	"strings"
	"time"
)

// HealthStatus is the aggregate cluster status, ordered from best to worst.
type HealthStatus int

const (
	HealthGreen HealthStatus = iota
	HealthYellow
	HealthRed
)

func (s HealthStatus) String() string {
	switch s {
	case HealthGreen:
		return "green"
	case HealthYellow:
		return "yellow"
	case HealthRed:
		return "red"
	default:
		return "unknown"
	}
}

func (s HealthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *HealthStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseHealthStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AtLeast reports whether s is as healthy as want or better.
func (s HealthStatus) AtLeast(want HealthStatus) bool {
	return s <= want
}

func ParseHealthStatus(v string) (HealthStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "green":
		return HealthGreen, nil
	case "yellow":
		return HealthYellow, nil
	case "red":
		return HealthRed, nil
	}
	return HealthRed, fmt.Errorf("unknown health status %q: %w", v, ErrInvalidInput)
}

type HealthRequest struct {
	WaitForStatus HealthStatus
	Timeout       time.Duration
}

type HealthResponse struct {
	ClusterName       string       `json:"cluster_name"`
	Status            HealthStatus `json:"status"`
	TimedOut          bool         `json:"timed_out"`
	NumberOfNodes     int          `json:"number_of_nodes"`
	NumberOfDataNodes int          `json:"number_of_data_nodes"`
}

type ReadinessResult int

const (
	ReadinessNotReady ReadinessResult = iota
	ReadinessReady
)

func (r ReadinessResult) String() string {
	if r == ReadinessReady {
		return "ready"
	}
	return "not_ready"
}

func (r ReadinessResult) IsReady() bool {
	return r == ReadinessReady
}
