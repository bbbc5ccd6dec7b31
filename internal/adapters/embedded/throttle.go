package embedded

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/eleven-am/searchnode/internal/domain"
	"golang.org/x/time/rate"
)

// throttle limits bytes written to the document store per second.
type throttle struct {
	limiter *rate.Limiter
	burst   int
}

const (
	throttleNone       = "none"
	defaultThrottleCap = 20 * humanize.MByte
)

// newThrottle returns nil when throttling is disabled.
func newThrottle(settings domain.NodeSettings) *throttle {
	kind := strings.ToLower(settings.GetDefault(domain.SettingThrottleType, throttleNone))
	if kind == throttleNone || kind == "" {
		return nil
	}

	perSecond := settings.GetBytes(domain.SettingThrottleMaxBytes, defaultThrottleCap)
	if perSecond == 0 {
		return nil
	}

	burst := int(perSecond)
	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		burst:   burst,
	}
}

func (t *throttle) String() string {
	if t == nil {
		return throttleNone
	}
	return humanize.Bytes(uint64(t.burst)) + "/s"
}

func (t *throttle) wait(ctx context.Context, n int) error {
	if t == nil {
		return nil
	}
	for n > 0 {
		chunk := n
		if chunk > t.burst {
			chunk = t.burst
		}
		if err := t.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
