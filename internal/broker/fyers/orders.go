package fyers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Nikhil1914/EMA-BOT/internal/broker"
	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

const orderTypeMarket = 2

type orderPayload struct {
	Symbol       string `json:"symbol"`
	Qty          int    `json:"qty"`
	Type         int    `json:"type"`
	Side         int    `json:"side"`
	ProductType  string `json:"productType"`
	LimitPrice   int    `json:"limitPrice"`
	StopPrice    int    `json:"stopPrice"`
	Validity     string `json:"validity"`
	DisclosedQty int    `json:"disclosedQty"`
	OfflineOrder bool   `json:"offlineOrder"`
}

// PlaceMarketOrder submits a DAY-validity market order. API-level rejections
// come back inside the OrderResponse, not as a Go error.
func (c *Client) PlaceMarketOrder(ctx context.Context, instrument string, side models.OrderSide, qty int, productType string) (broker.OrderResponse, error) {
	sideVal := 1
	if side == models.OrderSideSell {
		sideVal = -1
	}

	payload := orderPayload{
		Symbol:      instrument,
		Qty:         qty,
		Type:        orderTypeMarket,
		Side:        sideVal,
		ProductType: productType,
		Validity:    "DAY",
	}

	var out broker.OrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		SetError(&out).
		Post("/api/v3/orders/sync")
	if err != nil {
		return broker.OrderResponse{}, errors.Wrap(err, "place order")
	}

	c.logEntry().WithFields(map[string]interface{}{
		"symbol":  instrument,
		"side":    side,
		"qty":     qty,
		"product": productType,
		"status":  out.Status,
		"http":    resp.StatusCode(),
	}).Debug("market order placed")

	return out, nil
}

// ClosePosition sends the opposite-side market order for an open position.
func (c *Client) ClosePosition(ctx context.Context, instrument string, positionSide models.Side, qty int, productType string) (broker.OrderResponse, error) {
	switch positionSide {
	case models.SideLong:
		return c.PlaceMarketOrder(ctx, instrument, models.OrderSideSell, qty, productType)
	case models.SideShort:
		return c.PlaceMarketOrder(ctx, instrument, models.OrderSideBuy, qty, productType)
	default:
		return broker.OrderResponse{Status: "ok", Message: "no open position"}, nil
	}
}
