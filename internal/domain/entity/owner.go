package entity

import "time"

// Owner dueño (proveedor en consignación) de uno o más productos.
type Owner struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
