package input

import (
	"context"

	"perk-roulette/internal/domain"
)

// LineWebhookService interface - Input port (use case)
// Turns LINE chat commands into roulette operations
type LineWebhookService interface {
	// HandleWebhook processes incoming webhook events from LINE
	HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error
}
