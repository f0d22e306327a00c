package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories so they share one way of
// binding a request context to the connection.
type Base struct {
	db *gorm.DB
}

// NewBase binds a Base to conn, which may be a transaction handle.
func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the connection bound to ctx. A nil ctx returns it unbound.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Conn exposes the raw handle so callers can open a transaction on it.
func (b Base) Conn() *gorm.DB {
	return b.db
}
