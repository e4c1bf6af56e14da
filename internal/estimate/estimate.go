// Package estimate turns a raw order line list into per-dish groups, an
// estimated preparation time, and a severity tier for color-coding.
//
// Everything here is a pure function of its inputs. The board recomputes
// views on every poll cycle, so identical input must always produce
// identical output or the display would flicker between polls.
package estimate

import (
	"github.com/fondita/mesaboard/internal/domain"
)

// ExtraUnitMinutes is the flat marginal cost of each additional unit of the
// same dish. Batch cooking makes extra units cheap regardless of the dish;
// this is kitchen policy, not physics.
const ExtraUnitMinutes = 3

// LineGroup is one dish with its ordered quantity.
type LineGroup struct {
	Name     string
	Quantity int
}

// Group collapses a raw line list into (dish, quantity) groups. Matching is
// exact string equality, case-sensitive. Groups come out in first-appearance
// order so repeated calls on the same order render identically.
func Group(lines []string) []LineGroup {
	var groups []LineGroup
	index := make(map[string]int, len(lines))

	for _, name := range lines {
		if i, ok := index[name]; ok {
			groups[i].Quantity++
			continue
		}
		index[name] = len(groups)
		groups = append(groups, LineGroup{Name: name, Quantity: 1})
	}
	return groups
}

// TotalPrice sums quantity times unit price over all groups.
func TotalPrice(groups []LineGroup, catalog domain.MenuCatalog) float64 {
	var total float64
	for _, g := range groups {
		total += float64(g.Quantity) * catalog.PriceOf(g.Name)
	}
	return total
}

// TotalMinutes estimates the preparation time for a grouped order. Each
// group costs its dish's base time plus ExtraUnitMinutes per unit past the
// first; groups are summed.
func TotalMinutes(groups []LineGroup, catalog domain.MenuCatalog) int {
	total := 0
	for _, g := range groups {
		total += catalog.PrepMinutesOf(g.Name) + (g.Quantity-1)*ExtraUnitMinutes
	}
	return total
}

// SeverityFor buckets an estimated preparation time. Boundaries are
// inclusive on the lower tier: 15 is still Fast, 35 is still Attention.
func SeverityFor(minutes int) domain.Severity {
	switch {
	case minutes <= 15:
		return domain.SeverityFast
	case minutes <= 25:
		return domain.SeverityNormal
	case minutes <= 35:
		return domain.SeverityAttention
	default:
		return domain.SeverityUrgent
	}
}
