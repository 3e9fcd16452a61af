package store

import (
	"context"
	"database/sql"
	"fmt"

	"pharmacy-pos/internal/models"
)

const storeSettingsID = 1

// GetStoreStatus reads the singleton store_settings row
func (s *Store) GetStoreStatus(ctx context.Context) (*models.StoreStatus, error) {
	var status models.StoreStatus
	err := s.db.GetContext(ctx, &status,
		"SELECT * FROM store_settings WHERE id = $1", storeSettingsID)
	if err == sql.ErrNoRows {
		// Missing row reads as open; the seed creates it on boot.
		return &models.StoreStatus{ID: storeSettingsID, IsOpen: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// SetStoreStatus flips the open/closed flag. Closing requires a reason;
// opening clears it. Last write wins.
func (s *Store) SetStoreStatus(ctx context.Context, isOpen bool, closeReason string) (*models.StoreStatus, error) {
	if !isOpen && closeReason == "" {
		return nil, models.ErrCloseReasonRequired
	}
	if isOpen {
		closeReason = ""
	}

	var status models.StoreStatus
	err := s.db.GetContext(ctx, &status, `
		UPDATE store_settings
		SET is_open = $1, close_reason = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING *`,
		isOpen, closeReason, storeSettingsID)
	if err != nil {
		return nil, fmt.Errorf("failed to update store status: %w", err)
	}
	return &status, nil
}

// GetProfileByEmail looks up a staff profile for the login redirect
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile,
		"SELECT * FROM profiles WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
