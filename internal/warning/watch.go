package warning

import (
	"context"

	"github.com/signalsfoundry/vision-status/internal/cell"
	"github.com/signalsfoundry/vision-status/internal/logging"
)

// AvoidanceOffReason is the notice raised while the user keeps obstacle
// avoidance switched off.
const AvoidanceOffReason = "obstacle avoidance off"

// Watch sends an AvoidanceOffReason warning every time the user avoidance
// switch changes, until ctx is done. The value current at the time of the
// call is skipped. Each send is awaited before the next change is handled.
func Watch(ctx context.Context, enabled *cell.Cell[bool], s *Sender, log logging.Logger) error {
	if log == nil {
		log = logging.Noop()
	}
	sub := enabled.Subscribe()
	defer sub.Close()
	return watch(ctx, sub, s, log)
}

func watch(ctx context.Context, sub *cell.Subscription[bool], s *Sender, log logging.Logger) error {
	first := true
	var last bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-sub.C():
			if !ok {
				return nil
			}
			if first {
				first, last = false, v
				continue
			}
			if v == last {
				continue
			}
			last = v
			if err := <-s.Send(ctx, AvoidanceOffReason, v); err != nil {
				log.Warn(ctx, "avoidance warning not delivered", logging.Bool("user_avoidance_enabled", v), logging.Err(err))
			}
		}
	}
}
