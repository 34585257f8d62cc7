// internal/infra/database/postgres_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_notification_bot/internal/domain/reminder"

	"github.com/lib/pq" // For pq.Array and driver registration
)

const reminderColumns = `id, owner_id, message, times, kind, remaining_cycles, weekdays, target_date, day_of_month, created_at`

// PostgresReminderRepository implements reminder.Repository against the
// 'reminders' table. Times are stored as TEXT[], weekdays as INT[]
// (0 = Sunday, matching time.Weekday).
type PostgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

func (r *PostgresReminderRepository) CreateDaily(ctx context.Context, rem *reminder.Reminder) error {
	return r.create(ctx, rem)
}

func (r *PostgresReminderRepository) CreateMonthly(ctx context.Context, rem *reminder.Reminder) error {
	return r.create(ctx, rem)
}

func (r *PostgresReminderRepository) create(ctx context.Context, rem *reminder.Reminder) error {
	if err := rem.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid reminder: %w", err)
	}
	query := `INSERT INTO reminders (id, owner_id, message, times, kind, remaining_cycles, weekdays, target_date, day_of_month)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		rem.ID, rem.OwnerID, rem.Message, pq.Array(rem.Times), string(rem.Kind),
		nullCycles(rem), weekdaysArray(rem.Weekdays), nullDate(rem.TargetDate), nullDayOfMonth(rem.DayOfMonth),
	).Scan(&rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating reminder: %w", err)
	}
	return nil
}

func (r *PostgresReminderRepository) ListActive(ctx context.Context) ([]*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE remaining_cycles IS NULL OR remaining_cycles > 0
               ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *PostgresReminderRepository) ListActiveDaily(ctx context.Context) ([]*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE kind IN ('COUNTDOWN_DAILY', 'INFINITE_DAILY', 'WEEKDAY_RECURRING', 'WEEKDAY_ONCE')
                 AND (remaining_cycles IS NULL OR remaining_cycles > 0)
               ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *PostgresReminderRepository) ListActiveMonthly(ctx context.Context) ([]*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE kind IN ('COUNTDOWN_MONTHLY', 'INFINITE_MONTHLY')
                 AND (remaining_cycles IS NULL OR remaining_cycles > 0)
               ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *PostgresReminderRepository) ListForOwner(ctx context.Context, ownerID int64) ([]*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE owner_id = $1 AND (remaining_cycles IS NULL OR remaining_cycles > 0)
               ORDER BY created_at`
	return r.list(ctx, query, ownerID)
}

func (r *PostgresReminderRepository) ListOwners(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM reminders ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing reminder owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning owner id: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder owners: %w", err)
	}
	return owners, nil
}

func (r *PostgresReminderRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting reminder %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading delete result for reminder %s: %w", id, err)
	}
	return affected > 0, nil
}

// DecrementDailyCounters touches only pure day-countdown reminders;
// weekday and monthly kinds never carry a COUNTDOWN_DAILY tag.
func (r *PostgresReminderRepository) DecrementDailyCounters(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET remaining_cycles = remaining_cycles - 1
          WHERE kind = 'COUNTDOWN_DAILY' AND remaining_cycles > 0`)
	if err != nil {
		return 0, fmt.Errorf("error decrementing daily counters: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading daily decrement result: %w", err)
	}
	return count, nil
}

func (r *PostgresReminderRepository) DecrementMonthlyCounters(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET remaining_cycles = remaining_cycles - 1
          WHERE kind = 'COUNTDOWN_MONTHLY' AND remaining_cycles > 0 AND id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("error decrementing monthly counters: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading monthly decrement result: %w", err)
	}
	return count, nil
}

func (r *PostgresReminderRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE remaining_cycles IS NOT NULL AND remaining_cycles <= 0`)
	if err != nil {
		return 0, fmt.Errorf("error purging expired reminders: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading purge result: %w", err)
	}
	return count, nil
}

func (r *PostgresReminderRepository) list(ctx context.Context, query string, args ...any) ([]*reminder.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*reminder.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}
	return reminders, nil
}

func scanReminder(rows *sql.Rows) (*reminder.Reminder, error) {
	var (
		rem        reminder.Reminder
		kind       string
		times      pq.StringArray
		cycles     sql.NullInt64
		weekdays   pq.Int64Array
		targetDate sql.NullTime
		dayOfMonth sql.NullInt64
	)
	err := rows.Scan(&rem.ID, &rem.OwnerID, &rem.Message, &times, &kind,
		&cycles, &weekdays, &targetDate, &dayOfMonth, &rem.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error scanning reminder row: %w", err)
	}
	rem.Times = []string(times)
	rem.Kind = reminder.Kind(kind)
	if cycles.Valid {
		rem.RemainingCycles = int(cycles.Int64)
	}
	for _, wd := range weekdays {
		rem.Weekdays = append(rem.Weekdays, time.Weekday(wd))
	}
	if targetDate.Valid {
		rem.TargetDate = targetDate.Time.Format(reminder.TargetDateLayout)
	}
	if dayOfMonth.Valid {
		rem.DayOfMonth = int(dayOfMonth.Int64)
	}
	return &rem, nil
}

func nullCycles(rem *reminder.Reminder) sql.NullInt64 {
	if !rem.IsCountdown() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(rem.RemainingCycles), Valid: true}
}

func weekdaysArray(weekdays []time.Weekday) any {
	if len(weekdays) == 0 {
		return nil
	}
	out := make(pq.Int64Array, 0, len(weekdays))
	for _, wd := range weekdays {
		out = append(out, int64(wd))
	}
	return out
}

func nullDate(targetDate string) sql.NullTime {
	if targetDate == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(reminder.TargetDateLayout, targetDate)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullDayOfMonth(day int) sql.NullInt64 {
	if day == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(day), Valid: true}
}
