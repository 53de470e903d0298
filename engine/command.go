package engine

// Actions owned by this package. Route-specific actions are declared where the
// route table is built; these two are invoked by the engine client itself.
const (
	// ActionGetMarket resolves the market identity served by a DEX engine.
	ActionGetMarket = "getMarket"

	// ActionBootstrap announces gateway readiness on the engine's bootstrap channel.
	ActionBootstrap = "bootstrap"
)

// Command identifies an action on a bus-addressable module. The alias names
// the module instance (DEX engine or a chain adapter), the action names the
// operation to invoke on it.
type Command struct {
	Alias  string
	Action string
}

// String renders the canonical "<alias>:<action>" display form.
func (c Command) String() string {
	return c.Alias + ":" + c.Action
}

// Subject renders the NATS request subject for this command.
func (c Command) Subject() string {
	return c.Alias + "." + c.Action
}
