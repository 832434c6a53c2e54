package domain

import "time"

// Stock transaction kinds recorded in the ledger.
const (
	TxSale    = "Sale"
	TxReturn  = "Return"
	TxRestock = "Restock"
)

// Sale is an immutable ledger entry for a stock-affecting transaction.
// Product identity fields are denormalized snapshots taken at transaction
// time; they are never re-joined against the live product.
type Sale struct {
	ID          int64     `json:"id,string" form:"id"`
	Date        string    `gorm:"size:10;index" json:"date" form:"date"` // YYYY-MM-DD
	ProductID   int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	ProductName string    `gorm:"size:200" json:"productName"`
	Brand       string    `gorm:"size:128" json:"brand"`
	Barcode     string    `gorm:"size:64" json:"barcode"`
	Image       string    `gorm:"size:1024" json:"image"`
	Type        string    `gorm:"size:16;index" json:"type" form:"type"` // Sale | Return | Restock
	Qty         int       `json:"qty" form:"qty"`
	UnitPrice   float64   `json:"unitPrice" form:"unitPrice"`
	Amount      float64   `json:"amount"` // signed: Sale/Restock positive, Return negative
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Sale) TableName() string {
	return "inv_sale"
}
