// Package storage provides the durable per-device key/value store that backs
// the cart snapshot and the kiosk settings.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys.
const (
	KeyCart               = "huettenzauber_cart"
	KeyDepositReturnPrice = "depositReturnPrice"
	KeyTheme              = "theme"
)

// Store is a string key/value store scoped to one device origin.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
