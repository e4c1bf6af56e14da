package domain

// TableView is the derived per-table state the board renders. It is
// recomputed on every poll cycle and never persisted.
type TableView struct {
	Table            string
	Order            *Order // nil when the table has no active order
	ElapsedMinutes   int    // since the order was created, clamped to >= 0
	EstimatedMinutes int    // total estimated preparation time
	RemainingMinutes int    // estimated minus elapsed, clamped to >= 0
	Severity         Severity
}

// Occupied reports whether the table currently has an active order.
func (v TableView) Occupied() bool { return v.Order != nil }

// Severity buckets an order's estimated preparation time for color-coding.
type Severity int

const (
	SeverityIdle      Severity = iota // table has no active order
	SeverityFast                      // <= 15 min
	SeverityNormal                    // <= 25 min
	SeverityAttention                 // <= 35 min
	SeverityUrgent                    // everything slower
)

// String returns a human-readable severity tier.
func (s Severity) String() string {
	switch s {
	case SeverityIdle:
		return "idle"
	case SeverityFast:
		return "fast"
	case SeverityNormal:
		return "normal"
	case SeverityAttention:
		return "attention"
	case SeverityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}
