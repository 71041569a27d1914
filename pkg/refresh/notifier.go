package refresh

import (
	"context"
	"net/http"
	"time"

	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
)

// Notifier pushes the refresh signal to every other live process after
// a local mutation of shared persisted state (corpus, prompts, active
// model). Delivery is fire-and-forget, at most once: an unreachable
// peer is logged and forgotten, never surfaced to the mutating caller.
// The next reinitialization reconciles a missed signal.
type Notifier struct {
	targets []string
	client  *http.Client
	log     logger.ILogger
}

func NewNotifier(targets []string, log logger.ILogger) *Notifier {
	return &Notifier{
		targets: targets,
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

// Broadcast POSTs to each peer's refresh endpoint. It blocks for at
// most the per-target timeout each; callers that must not wait at all
// run it in a goroutine.
func (n *Notifier) Broadcast(ctx context.Context) {
	for _, target := range n.targets {
		n.notify(ctx, target)
	}
}

func (n *Notifier) notify(ctx context.Context, target string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		n.log.Warn("refresh", "invalid refresh target", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
		return
	}

	res, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("refresh", "peer unreachable, skipping", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		n.log.Warn("refresh", "peer rejected refresh signal", map[string]interface{}{
			"target": target,
			"status": res.StatusCode,
		})
		return
	}
	n.log.Info("refresh", "peer refreshed", map[string]interface{}{
		"target": target,
	})
}
