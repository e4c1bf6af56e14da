package estimate

import (
	"testing"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
	"github.com/fondita/mesaboard/internal/menu"
)

func testCatalog() domain.MenuCatalog {
	return menu.NewCatalog(logger.New(logger.LevelOff, nil))
}

func TestGroupPreservesCountAndOrder(t *testing.T) {
	lines := []string{"Pozole", "Tamales", "Pozole", "Tacos al pastor", "Pozole"}
	groups := Group(lines)

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	// Quantities must sum to the input length.
	sum := 0
	for _, g := range groups {
		sum += g.Quantity
	}
	if sum != len(lines) {
		t.Fatalf("group quantities sum to %d, want %d", sum, len(lines))
	}

	// First-appearance order.
	want := []LineGroup{
		{Name: "Pozole", Quantity: 3},
		{Name: "Tamales", Quantity: 1},
		{Name: "Tacos al pastor", Quantity: 1},
	}
	for i, g := range groups {
		if g != want[i] {
			t.Fatalf("group %d = %+v, want %+v", i, g, want[i])
		}
	}
}

func TestGroupEmpty(t *testing.T) {
	if groups := Group(nil); len(groups) != 0 {
		t.Fatalf("expected no groups for empty input, got %d", len(groups))
	}
}

func TestTotalMinutesWorkedExample(t *testing.T) {
	cat := testCatalog()

	// Two tacos batch together: 12 + 3. The pozole stands alone: 22.
	lines := []string{"Tacos al pastor", "Tacos al pastor", "Pozole"}
	groups := Group(lines)

	got := TotalMinutes(groups, cat)
	if got != 37 {
		t.Fatalf("TotalMinutes = %d, want 37", got)
	}
	if sev := SeverityFor(got); sev != domain.SeverityUrgent {
		t.Fatalf("SeverityFor(37) = %s, want urgent", sev)
	}
}

func TestTotalMinutesDeterministic(t *testing.T) {
	cat := testCatalog()
	groups := Group([]string{"Enchiladas verdes", "Tamales", "Enchiladas verdes"})

	first := TotalMinutes(groups, cat)
	for i := 0; i < 10; i++ {
		if got := TotalMinutes(groups, cat); got != first {
			t.Fatalf("call %d returned %d, first call returned %d", i, got, first)
		}
	}
}

func TestTotalMinutesUnknownDishDefault(t *testing.T) {
	cat := testCatalog()
	groups := Group([]string{"Quesabirria", "Quesabirria"})

	// Unknown dish falls back to the 15-minute default: 15 + 3.
	if got := TotalMinutes(groups, cat); got != 18 {
		t.Fatalf("TotalMinutes = %d, want 18", got)
	}
}

func TestTotalPrice(t *testing.T) {
	cat := testCatalog()
	groups := Group([]string{"Tacos al pastor", "Tacos al pastor", "Tamales"})

	want := 2*7.50 + 6.50
	if got := TotalPrice(groups, cat); got != want {
		t.Fatalf("TotalPrice = %.2f, want %.2f", got, want)
	}

	// Unknown dishes are free, matching the catalog's 0 default.
	groups = Group([]string{"Quesabirria"})
	if got := TotalPrice(groups, cat); got != 0 {
		t.Fatalf("TotalPrice for unknown dish = %.2f, want 0", got)
	}
}

func TestSeverityBoundaries(t *testing.T) {
	tests := []struct {
		minutes int
		want    domain.Severity
	}{
		{0, domain.SeverityFast},
		{15, domain.SeverityFast},
		{16, domain.SeverityNormal},
		{25, domain.SeverityNormal},
		{26, domain.SeverityAttention},
		{35, domain.SeverityAttention},
		{36, domain.SeverityUrgent},
		{120, domain.SeverityUrgent},
	}

	for _, tt := range tests {
		if got := SeverityFor(tt.minutes); got != tt.want {
			t.Errorf("SeverityFor(%d) = %s, want %s", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "Less than 1 min"},
		{1, "1 min"},
		{59, "59 min"},
		{60, "1h"},
		{125, "2h 5min"},
	}

	for _, tt := range tests {
		if got := FormatElapsed(tt.minutes); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatEstimated(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{12, "12 min"},
		{59, "59 min"},
		{60, "1h"},
		{90, "1h 30min"},
		{125, "2h 5min"},
	}

	for _, tt := range tests {
		if got := FormatEstimated(tt.minutes); got != tt.want {
			t.Errorf("FormatEstimated(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
