package audit

import "context"

// AuditRepository is append-only on the write side: entries are created in
// the same transaction as the mutation they describe, and never updated or
// deleted afterwards.
type AuditRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)

	List(ctx context.Context, filter ListFilter) ([]Entry, int64, error)
}
