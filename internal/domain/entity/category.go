package entity

// Category agrupa productos para los reportes de ventas por categoría.
type Category struct {
	ID   string
	Name string
}
