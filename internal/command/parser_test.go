package command

import (
	"context"
	"testing"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},
		{"menu", domain.IntentMenu, ""},
		{"carta", domain.IntentMenu, ""},
		{"add Pozole", domain.IntentAdd, "Pozole"},
		{"ADD tacos al pastor", domain.IntentAdd, "tacos al pastor"},
		{"quiero Tamales", domain.IntentAdd, "Tamales"},
		{"remove Pozole", domain.IntentRemove, "Pozole"},
		{"cart", domain.IntentCart, ""},
		{"clear", domain.IntentClearCart, ""},
		{"send", domain.IntentSend, ""},
		{"checkout", domain.IntentSend, ""},
		{"tables", domain.IntentTables, ""},
		{"mesas", domain.IntentTables, ""},
		{"table 6", domain.IntentSelectTable, "6"},
		{"mesa 4", domain.IntentSelectTable, "4"},
		{"4", domain.IntentSelectTable, "4"},
		{"track", domain.IntentTrack, ""},
		{"ready 4", domain.IntentUpdateStatus, "ready 4"},
		{"Preparing 6", domain.IntentUpdateStatus, "Preparing 6"},
		{"delivered 7", domain.IntentUpdateStatus, "delivered 7"},
		{"refresh", domain.IntentRefresh, ""},
		{"r", domain.IntentRefresh, ""},
		{"login chef pozole", domain.IntentLogin, "login chef pozole"},
		{"logout", domain.IntentLogout, ""},
		{"quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},
		{"", domain.IntentUnknown, ""},
		{"make me a sandwich", domain.IntentUnknown, "make me a sandwich"},
		// "ready" with no table is not an update.
		{"ready", domain.IntentUnknown, "ready"},
	}

	for _, tt := range tests {
		intent, err := parser.Parse(ctx, tt.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.input, err)
			continue
		}
		if intent.Type != tt.wantType {
			t.Errorf("Parse(%q) type = %s, want %s", tt.input, intent.Type, tt.wantType)
		}
		if intent.Payload != tt.wantPayload {
			t.Errorf("Parse(%q) payload = %q, want %q", tt.input, intent.Payload, tt.wantPayload)
		}
	}
}

func TestParseStatusUpdate(t *testing.T) {
	tests := []struct {
		payload    string
		wantStatus domain.OrderStatus
		wantTable  string
		wantOK     bool
	}{
		{"ready 4", domain.StatusReady, "4", true},
		{"RECEIVED 2", domain.StatusReceived, "2", true},
		{"preparing 6", domain.StatusPreparing, "6", true},
		{"delivered 7", domain.StatusDelivered, "7", true},
		{"burnt 4", 0, "", false},
		{"ready", 0, "", false},
		{"ready 4 5", 0, "", false},
	}

	for _, tt := range tests {
		status, table, ok := ParseStatusUpdate(tt.payload)
		if ok != tt.wantOK || status != tt.wantStatus || table != tt.wantTable {
			t.Errorf("ParseStatusUpdate(%q) = (%v, %q, %v), want (%v, %q, %v)",
				tt.payload, status, table, ok, tt.wantStatus, tt.wantTable, tt.wantOK)
		}
	}
}
