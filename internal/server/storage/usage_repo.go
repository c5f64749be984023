package storage

import (
	"context"
	"time"
)

// UsageRepository counts requests per user per UTC day.
type UsageRepository struct {
	db *DB
}

func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Today returns the number of requests counted for userID on now's day.
func (r *UsageRepository) Today(ctx context.Context, userID int64, now time.Time) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u := r.db.usage[userID]
	if u.day != dayKey(now) {
		return 0, nil
	}
	return u.count, nil
}

// Increment counts one request unless limit is already reached. It returns
// the new count and whether the request was counted.
func (r *UsageRepository) Increment(ctx context.Context, userID int64, now time.Time, limit int) (int, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	day := dayKey(now)
	u := r.db.usage[userID]
	if u.day != day {
		u = dailyUsage{day: day}
	}
	if u.count >= limit {
		return u.count, false, nil
	}
	u.count++
	r.db.usage[userID] = u
	return u.count, true, nil
}
