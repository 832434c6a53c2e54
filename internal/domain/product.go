package domain

import "time"

// Product is a catalog item with live stock quantity and a reorder threshold.
// Barcode uniqueness is enforced by a partial unique index created at
// migration time so that products without a barcode do not collide.
type Product struct {
	ID               int64     `json:"id,string" form:"id"`
	Name             string    `gorm:"index" json:"name" form:"name"`
	Brand            string    `gorm:"size:128" json:"brand" form:"brand"`
	Barcode          string    `gorm:"size:64;index" json:"barcode" form:"barcode"`
	Price            float64   `json:"price" form:"price"`
	Quantity         int       `gorm:"default:0" json:"quantity" form:"quantity"`
	ReorderThreshold int       `gorm:"default:3" json:"reorderThreshold" form:"reorderThreshold"`
	Image            string    `gorm:"size:1024" json:"image" form:"image"`
	Tags             string    `gorm:"size:512" json:"tags" form:"tags"` // comma separated
	Type             string    `gorm:"size:32;default:'sneaker'" json:"type" form:"type"`
	Color            string    `gorm:"size:32;default:'black'" json:"color" form:"color"`
	Material         string    `gorm:"size:64" json:"material" form:"material"`
	Rating           float64   `gorm:"default:4" json:"rating" form:"rating"`
	Reviews          int       `gorm:"default:0" json:"reviews" form:"reviews"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "inv_product"
}

// LowStock reports whether the product sits at or below its reorder threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.ReorderThreshold
}
