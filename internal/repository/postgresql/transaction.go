package postgresql

import (
	"context"

	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
)

// GetQuerier returns the transaction carried by the context, or the pool.
// Repositories call this so the same code path works inside and outside a
// service-level transaction.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFrom(ctx); ok {
		return tx
	}
	return db.Pool
}
