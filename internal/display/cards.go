package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/estimate"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(24)

	cardTitleStyle = lipgloss.NewStyle().Bold(true)
)

// RenderBoard draws one bordered card per table, side by side, in table
// order. The card border takes the table's severity color.
func RenderBoard(views []domain.TableView) string {
	if len(views) == 0 {
		return secondaryStyle.Render("  no tables configured")
	}

	cards := make([]string, 0, len(views))
	for _, v := range views {
		cards = append(cards, renderCard(v))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderCard(v domain.TableView) string {
	style := severityStyle(v.Severity)
	border := cardStyle.BorderForeground(severityColor(v.Severity))

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Mesa " + v.Table))
	b.WriteByte('\n')

	if !v.Occupied() {
		b.WriteString(secondaryStyle.Render("libre"))
		return border.Render(b.String())
	}

	b.WriteString(style.Render(v.Order.Status.String()))
	b.WriteByte('\n')

	for _, g := range estimate.Group(v.Order.Lines) {
		b.WriteString(primaryStyle.Render(fmt.Sprintf("%dx %s", g.Quantity, g.Name)))
		b.WriteByte('\n')
	}

	b.WriteString(secondaryStyle.Render("waiting " + estimate.FormatElapsed(v.ElapsedMinutes)))
	b.WriteByte('\n')
	b.WriteString(style.Render("est " + estimate.FormatEstimated(v.EstimatedMinutes)))

	return border.Render(b.String())
}

func severityColor(s domain.Severity) lipgloss.Color {
	switch s {
	case domain.SeverityFast:
		return lipgloss.Color("#7CB342")
	case domain.SeverityNormal:
		return lipgloss.Color("#FFA726")
	case domain.SeverityAttention:
		return lipgloss.Color("#FF9800")
	case domain.SeverityUrgent:
		return lipgloss.Color("#EF5350")
	default:
		return lipgloss.Color("#CCCCCC")
	}
}

// RenderOrder draws a single order's detail lines for the tracking and
// table-detail views.
func RenderOrder(o *domain.Order, catalog domain.MenuCatalog) string {
	if o == nil {
		return secondaryStyle.Render("  no active order")
	}

	var b strings.Builder
	b.WriteString(primaryStyle.Render(fmt.Sprintf("  Mesa %s — %s", o.Table, o.Status)))
	b.WriteByte('\n')

	groups := estimate.Group(o.Lines)
	for _, g := range groups {
		line := fmt.Sprintf("    %dx %-20s $%.2f", g.Quantity, g.Name, catalog.PriceOf(g.Name)*float64(g.Quantity))
		b.WriteString(primaryStyle.Render(line))
		b.WriteByte('\n')
	}

	b.WriteString(secondaryStyle.Render(fmt.Sprintf("    total $%.2f, estimate %s",
		o.Total, estimate.FormatEstimated(estimate.TotalMinutes(groups, catalog)))))
	return b.String()
}

// RenderMenu draws the dish catalog.
func RenderMenu(dishes []domain.Dish) string {
	var b strings.Builder
	b.WriteString(primaryStyle.Render("  Menu"))
	b.WriteByte('\n')
	for _, d := range dishes {
		b.WriteString(primaryStyle.Render(fmt.Sprintf("    %-20s $%.2f", d.Name, d.Price)))
		b.WriteString(secondaryStyle.Render(fmt.Sprintf("  (~%d min)", d.PrepMinutes)))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
