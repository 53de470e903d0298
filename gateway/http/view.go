package http

import (
	"encoding/json"
)

// OrderRecord is the engine's native shape for one order-book entry. Numeric
// fields decode as json.Number so values survive verbatim through the
// normalization below.
type OrderRecord struct {
	OrderID       string      `json:"orderId"`
	Price         json.Number `json:"price"`
	Size          json.Number `json:"size"`
	SizeRemaining json.Number `json:"sizeRemaining"`
	Side          string      `json:"side"`
	Timestamp     json.Number `json:"timestamp"`
}

// GdaxOrder is the normalized exchange-view projection of an OrderRecord,
// matching the widely adopted GDAX order schema. It is lossy and display-only:
// fill fields the engine does not supply carry fixed zero literals, and every
// order reports as an open, unsettled limit order.
type GdaxOrder struct {
	ID            string      `json:"id"`
	Price         json.Number `json:"price"`
	Size          json.Number `json:"size"`
	ProductID     string      `json:"product_id"`
	Side          string      `json:"side"`
	Stp           string      `json:"stp"`
	Type          string      `json:"type"`
	TimeInForce   string      `json:"time_in_force"`
	PostOnly      bool        `json:"post_only"`
	CreatedAt     json.Number `json:"created_at"`
	FillFees      string      `json:"fill_fees"`
	FilledSize    string      `json:"filled_size"`
	ExecutedValue string      `json:"executed_value"`
	Status        string      `json:"status"`
	Settled       bool        `json:"settled"`
}

// Fixed zero literals for fill fields the engine never reports.
const (
	zeroFillValue  = "0.0000000000000000"
	zeroFilledSize = "0.00000000"
)

// toGdaxOrders projects native order records into the normalized exchange
// view. side is "buy" or "sell" for single-sided routes, or "" for mixed
// lists where it derives per record from the native side tag ("ask" maps to
// "sell", anything else to "buy"). The transform never filters or reorders:
// output cardinality and order match the input exactly.
func toGdaxOrders(records []OrderRecord, side string, productID string) []GdaxOrder {
	orders := make([]GdaxOrder, len(records))
	for i, record := range records {
		orderSide := side
		if orderSide == "" {
			if record.Side == "ask" {
				orderSide = "sell"
			} else {
				orderSide = "buy"
			}
		}

		// Partially filled open orders report the remaining size.
		size := record.SizeRemaining
		if size == "" {
			size = record.Size
		}

		orders[i] = GdaxOrder{
			ID:            record.OrderID,
			Price:         numberOrZero(record.Price),
			Size:          numberOrZero(size),
			ProductID:     productID,
			Side:          orderSide,
			Stp:           "dc",
			Type:          "limit",
			TimeInForce:   "GTC",
			PostOnly:      false,
			CreatedAt:     numberOrZero(record.Timestamp),
			FillFees:      zeroFillValue,
			FilledSize:    zeroFilledSize,
			ExecutedValue: zeroFillValue,
			Status:        "open",
			Settled:       false,
		}
	}
	return orders
}

// numberOrZero keeps the transform total: an absent numeric field marshals as
// 0 instead of failing on the empty json.Number literal.
func numberOrZero(n json.Number) json.Number {
	if n == "" {
		return "0"
	}
	return n
}
