package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysUser{},
	&SysOprLog{},
	// Inventory
	&Product{},
	&Sale{},
	&ReorderRequest{},
}
