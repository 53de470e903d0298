package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Capitalisk/capitalisk-dex-http-api/errors"
)

// MarketIdentity names the trading pair a DEX engine serves. Fetched once at
// startup and immutable for the process lifetime.
type MarketIdentity struct {
	BaseSymbol  string `json:"baseSymbol"`
	QuoteSymbol string `json:"quoteSymbol"`
}

// DisplayID renders the "<quote>-<base>" pair identifier used as the
// product_id of normalized order views.
func (m MarketIdentity) DisplayID() string {
	return m.QuoteSymbol + "-" + m.BaseSymbol
}

// FetchMarket resolves the market identity from the engine at the given
// alias. The gateway does not serve routes until this succeeds; failures are
// fatal classified errors so startup aborts rather than serving with an
// unknown market.
func (c *Client) FetchMarket(ctx context.Context, alias string) (MarketIdentity, error) {
	cmd := Command{Alias: alias, Action: ActionGetMarket}

	result, err := c.Invoke(ctx, cmd, nil)
	if err != nil {
		return MarketIdentity{}, errors.WrapFatal(err, "engine", "FetchMarket", fmt.Sprintf("invoke %s", cmd))
	}

	var market MarketIdentity
	if err := json.Unmarshal(result, &market); err != nil {
		return MarketIdentity{}, errors.WrapFatal(err, "engine", "FetchMarket", fmt.Sprintf("decode %s result", cmd))
	}

	if market.BaseSymbol == "" || market.QuoteSymbol == "" {
		return MarketIdentity{}, errors.WrapFatal(errors.ErrInvalidData, "engine", "FetchMarket",
			"validate market identity")
	}

	return market, nil
}
