package http

import (
	"github.com/Capitalisk/capitalisk-dex-http-api/gateway"
)

// buildRoutes returns the gateway's complete route table. The table is
// declarative and static: chain routes are always registered even when their
// dependency alias is unconfigured, in which case the handler answers 501
// without touching the bus. The combined /orders and /gdax/orders endpoints
// map to the single getOrders action, one invoke per request.
func buildRoutes() []gateway.RouteSpec {
	return []gateway.RouteSpec{
		{Method: "GET", Path: "/status", Action: "getStatus"},

		{Method: "GET", Path: "/orders/bids", Action: "getBids", Sanitize: true},
		{Method: "GET", Path: "/orders/asks", Action: "getAsks", Sanitize: true},
		{Method: "GET", Path: "/orders", Action: "getOrders", Sanitize: true},
		{Method: "GET", Path: "/order-book", Action: "getOrderBook", Sanitize: true},

		{Method: "GET", Path: "/prices/recent", Action: "getRecentPrices", Sanitize: true},
		{Method: "GET", Path: "/transfers/pending", Action: "getPendingTransfers", Sanitize: true},
		{Method: "GET", Path: "/transfers/recent", Action: "getRecentTransfers", Sanitize: true},

		{Method: "GET", Path: "/gdax/orders/bids", Action: "getBids", Sanitize: true, View: gateway.ViewGdaxBuy},
		{Method: "GET", Path: "/gdax/orders/asks", Action: "getAsks", Sanitize: true, View: gateway.ViewGdaxSell},
		{Method: "GET", Path: "/gdax/orders", Action: "getOrders", Sanitize: true, View: gateway.ViewGdaxMixed},

		{Method: "GET", Path: "/chain/base/account", Action: "getAccount", Sanitize: true, Dependency: gateway.DependencyBaseChain},
		{Method: "GET", Path: "/chain/quote/account", Action: "getAccount", Sanitize: true, Dependency: gateway.DependencyQuoteChain},
		{Method: "POST", Path: "/chain/base/transaction", Action: "postTransaction", ForwardBody: true, Dependency: gateway.DependencyBaseChain},
		{Method: "POST", Path: "/chain/quote/transaction", Action: "postTransaction", ForwardBody: true, Dependency: gateway.DependencyQuoteChain},
	}
}
