package store

import (
	"context"
	"fmt"
	"time"
)

// IsStaff reports whether telegramID is registered staff.
func (s *Store) IsStaff(ctx context.Context, telegramID int64) (ok bool, err error) {
	defer s.track(ctx, "is_staff", time.Now(), &err)
	err = s.db.GetContext(ctx, &ok, "SELECT EXISTS (SELECT 1 FROM staff WHERE telegram_id = $1)", telegramID)
	if err != nil {
		return false, fmt.Errorf("is staff: %w", err)
	}
	return ok, nil
}

// AddStaff registers telegramID. It returns false when it was already present.
func (s *Store) AddStaff(ctx context.Context, telegramID, addedBy int64, fullname string) (added bool, err error) {
	defer s.track(ctx, "add_staff", time.Now(), &err)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO staff (telegram_id, fullname, added_by) VALUES ($1, $2, $3)
		 ON CONFLICT (telegram_id) DO NOTHING`, telegramID, fullname, addedBy)
	if err != nil {
		return false, fmt.Errorf("add staff: %w", err)
	}
	return rowsAffected(res) > 0, nil
}

// RemoveStaff deletes telegramID. It returns false when nothing was deleted.
func (s *Store) RemoveStaff(ctx context.Context, telegramID int64) (removed bool, err error) {
	defer s.track(ctx, "remove_staff", time.Now(), &err)
	res, err := s.db.ExecContext(ctx, "DELETE FROM staff WHERE telegram_id = $1", telegramID)
	if err != nil {
		return false, fmt.Errorf("remove staff: %w", err)
	}
	return rowsAffected(res) > 0, nil
}
