// internal/domain/reminder/repository.go
package reminder

import (
	"context"
)

// Repository defines the persistence operations for Reminder records.
// Each mutation is a self-contained conditional update or delete; the
// scheduler jobs never rely on cross-call read-modify-write atomicity.
type Repository interface {
	CreateDaily(ctx context.Context, r *Reminder) error
	CreateMonthly(ctx context.Context, r *Reminder) error

	// ListActive returns every reminder still eligible to fire:
	// countdown kinds with a positive counter, other kinds unconditionally.
	ListActive(ctx context.Context) ([]*Reminder, error)
	ListActiveDaily(ctx context.Context) ([]*Reminder, error)
	ListActiveMonthly(ctx context.Context) ([]*Reminder, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]*Reminder, error)

	// ListOwners returns the distinct owner IDs with at least one reminder.
	ListOwners(ctx context.Context) ([]int64, error)

	// DeleteByID reports whether a record was actually removed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DecrementDailyCounters decrements remaining_cycles for every
	// pure day-countdown reminder and returns the number touched.
	DecrementDailyCounters(ctx context.Context) (int64, error)

	// DecrementMonthlyCounters decrements remaining_cycles for exactly
	// the given monthly reminder IDs and returns the number touched.
	DecrementMonthlyCounters(ctx context.Context, ids []string) (int64, error)

	// PurgeExpired deletes every reminder whose counter reached zero
	// or below and returns the number removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
