package domain

import "github.com/xmenbro/AutoRepairCenter/pkg/jsonid"

// ID identifies products and users. 7 and "7" name the same product.
type ID = jsonid.ID

// ParseID trims s and returns it as an ID.
func ParseID(s string) ID {
	return jsonid.Parse(s)
}
