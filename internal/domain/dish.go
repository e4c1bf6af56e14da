package domain

// Dish is a menu entry. The catalog is static and loaded at startup.
type Dish struct {
	Name        string
	Price       float64
	PrepMinutes int // base preparation time for a single unit
}
