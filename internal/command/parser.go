// Package command provides prompt input parsing and user notification
// implementations for the two terminal clients.
package command

import (
	"context"
	"regexp"
	"strings"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches prompt input to intents using keywords and simple
// patterns. Both the ordering client and the kitchen board share it; each
// binary just ignores the intents that make no sense for it.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	intent  domain.IntentType
	payload int // capture group index carried as payload, 0 for none
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp, 0},
		{regexp.MustCompile(`(?i)^(menu|carta|dishes)$`), domain.IntentMenu, 0},
		{regexp.MustCompile(`(?i)^(add|order|quiero)\s+(.+)$`), domain.IntentAdd, 2},
		{regexp.MustCompile(`(?i)^(remove|drop)\s+(.+)$`), domain.IntentRemove, 2},
		{regexp.MustCompile(`(?i)^(cart|basket)$`), domain.IntentCart, 0},
		{regexp.MustCompile(`(?i)^(clear|empty)$`), domain.IntentClearCart, 0},
		{regexp.MustCompile(`(?i)^(send|submit|checkout)$`), domain.IntentSend, 0},
		{regexp.MustCompile(`(?i)^(tables|board|mesas)$`), domain.IntentTables, 0},
		{regexp.MustCompile(`(?i)^(table|mesa)\s+(\S+)$`), domain.IntentSelectTable, 2},
		{regexp.MustCompile(`(?i)^(track|status)$`), domain.IntentTrack, 0},
		// Kitchen shorthand: the status word followed by the table,
		// e.g. "ready 4" or "preparing 6".
		{regexp.MustCompile(`(?i)^(received|preparing|ready|delivered)\s+(\S+)$`), domain.IntentUpdateStatus, 0},
		{regexp.MustCompile(`(?i)^(refresh|update|r)$`), domain.IntentRefresh, 0},
		{regexp.MustCompile(`(?i)^login\b`), domain.IntentLogin, 0},
		{regexp.MustCompile(`(?i)^logout$`), domain.IntentLogout, 0},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit, 0},
	}
	return p
}

// Parse converts prompt input into an intent.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	// A bare table number selects that table (e.g. "4").
	if len(trimmed) <= 2 && isDigits(trimmed) {
		return &domain.Intent{Type: domain.IntentSelectTable, Payload: trimmed}, nil
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)

		intent := &domain.Intent{Type: rule.intent}
		switch {
		case rule.payload > 0:
			intent.Payload = strings.TrimSpace(m[rule.payload])
		case rule.intent == domain.IntentUpdateStatus || rule.intent == domain.IntentLogin:
			// These carry the whole input; the caller splits it.
			intent.Payload = trimmed
		}
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// ParseStatusUpdate splits an update command like "ready 4" into the target
// status and the table id. Returns false when the payload isn't one.
func ParseStatusUpdate(payload string) (domain.OrderStatus, string, bool) {
	parts := strings.Fields(payload)
	if len(parts) != 2 {
		return 0, "", false
	}

	var status domain.OrderStatus
	switch strings.ToLower(parts[0]) {
	case "received":
		status = domain.StatusReceived
	case "preparing":
		status = domain.StatusPreparing
	case "ready":
		status = domain.StatusReady
	case "delivered":
		status = domain.StatusDelivered
	default:
		return 0, "", false
	}
	return status, parts[1], true
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
