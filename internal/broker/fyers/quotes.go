package fyers

import (
	"context"

	"github.com/pkg/errors"
)

type quotesResponse struct {
	S string `json:"s"`
	D []struct {
		N string     `json:"n"`
		V quoteValue `json:"v"`
	} `json:"d"`
}

type quoteValue struct {
	LP        *float64 `json:"lp"`
	LTP       *float64 `json:"ltp"`
	LastPrice *float64 `json:"last_price"`
}

// LastPrice fetches the last traded price via the quotes endpoint. The API
// reports the price under one of several keys depending on segment.
func (c *Client) LastPrice(ctx context.Context, instrument string) (float64, error) {
	var out quotesResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbols", instrument).
		SetResult(&out).
		Get("/data/quotes")
	if err != nil {
		return 0, errors.Wrap(err, "quotes request")
	}
	if resp.IsError() {
		return 0, errors.Errorf("quotes request failed: %s", resp.Status())
	}
	if len(out.D) == 0 {
		return 0, errors.Errorf("no quote for %s", instrument)
	}

	v := out.D[0].V
	for _, p := range []*float64{v.LP, v.LTP, v.LastPrice} {
		if p != nil && *p > 0 {
			return *p, nil
		}
	}
	return 0, errors.Errorf("quote for %s carries no last price", instrument)
}
