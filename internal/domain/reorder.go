package domain

import "time"

// Reorder request statuses. Only Pending requests are owned by this service;
// Created/Cancelled transitions belong to the downstream purchasing workflow.
const (
	ReorderPending   = "Pending"
	ReorderCreated   = "Created"
	ReorderCancelled = "Cancelled"
)

// ReorderRequest is a replenishment suggestion for an under-threshold
// product. At most one Pending request may exist per product, enforced by a
// partial unique index on (product_id) where status = 'Pending'.
type ReorderRequest struct {
	ID            int64     `json:"id,string" form:"id"`
	ProductID     int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	Status        string    `gorm:"size:16;index;default:'Pending'" json:"status" form:"status"`
	QtySuggestion int       `gorm:"default:0" json:"qtySuggestion" form:"qtySuggestion"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ReorderRequest) TableName() string {
	return "inv_reorder_request"
}
