package broker

import (
	"context"

	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

// OrderResponse is the broker's reply to an order call. Orders are best-effort:
// an API-level rejection comes back as Status "error" with the broker's message,
// and the caller logs it rather than retrying.
type OrderResponse struct {
	Status  string `json:"s"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	OrderID string `json:"id,omitempty"`
}

func (r OrderResponse) OK() bool {
	return r.Status == "ok"
}

// Gateway is the execution surface the strategy controller drives. All calls
// are synchronous and fire-and-forget from the engine's point of view.
type Gateway interface {
	// LastPrice fetches the last traded price for an instrument. A missing or
	// empty quote is an error; callers skip the current evaluation.
	LastPrice(ctx context.Context, instrument string) (float64, error)

	// PlaceMarketOrder submits a market order.
	PlaceMarketOrder(ctx context.Context, instrument string, side models.OrderSide, qty int, productType string) (OrderResponse, error)

	// ClosePosition closes an open position by sending the opposite-side
	// market order. A flat side is a no-op.
	ClosePosition(ctx context.Context, instrument string, positionSide models.Side, qty int, productType string) (OrderResponse, error)
}
