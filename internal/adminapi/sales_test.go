package adminapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaleSearchClause(t *testing.T) {
	clause, args := saleSearchClause("nike")

	assert.Contains(t, clause, "product_name ILIKE ?")
	assert.Contains(t, clause, "brand ILIKE ?")
	assert.Contains(t, clause, "barcode ILIKE ?")
	assert.Equal(t, []interface{}{"%nike%", "%nike%", "%nike%"}, args)
}
