// Package settings implements the key-value registry backing invoice
// generation inputs (tax rate and surcharge keys).
package settings

import "time"

// Well-known keys.
const (
	KeyPPN = "ppn"
)

// DefaultPPN is the tax percentage applied when no ppn setting exists.
const DefaultPPN = "11"

// Setting is one key-value row.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
