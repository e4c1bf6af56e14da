package domain

// IntentType classifies what the user typed at the prompt.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentHelp
	IntentMenu         // show the dish catalog
	IntentAdd          // add a dish to the cart
	IntentRemove       // remove a dish from the cart
	IntentCart         // show the cart
	IntentClearCart    // empty the cart
	IntentSend         // submit the cart as an order
	IntentTables       // show the table board
	IntentSelectTable  // inspect one table's order
	IntentTrack        // show the tracked table's order status
	IntentUpdateStatus // move an order to a new status, e.g. "ready 4"
	IntentRefresh      // force a poll cycle now
	IntentLogin
	IntentLogout
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentHelp:
		return "help"
	case IntentMenu:
		return "menu"
	case IntentAdd:
		return "add"
	case IntentRemove:
		return "remove"
	case IntentCart:
		return "cart"
	case IntentClearCart:
		return "clear_cart"
	case IntentSend:
		return "send"
	case IntentTables:
		return "tables"
	case IntentSelectTable:
		return "select_table"
	case IntentTrack:
		return "track"
	case IntentUpdateStatus:
		return "update_status"
	case IntentRefresh:
		return "refresh"
	case IntentLogin:
		return "login"
	case IntentLogout:
		return "logout"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent is a parsed user command. Payload carries the argument part, e.g.
// the dish name for add/remove or "ready 4" for a status update.
type Intent struct {
	Type    IntentType
	Payload string
}
