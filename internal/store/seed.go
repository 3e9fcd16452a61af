package store

import (
	"context"

	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/util"

	"go.uber.org/zap"
)

// Seed bootstraps the singleton store_settings row and, on an empty ledger,
// a small starter inventory. Safe to call on every boot.
func (s *Store) Seed(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_settings (id, is_open, close_reason)
		VALUES ($1, true, '')
		ON CONFLICT (id) DO NOTHING`,
		storeSettingsID)
	if err != nil {
		return err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products"); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	util.GetLogger().Info("Empty ledger, seeding starter inventory")

	starter := []models.Product{
		{Name: "Paracetamol 500mg", GenericName: "Acetaminophen", Price: 500, Quantity: 120, Category: "Painkillers", Description: "Pack of 20 tablets"},
		{Name: "Amoxicillin 250mg", GenericName: "Amoxicillin", Price: 1500, Quantity: 60, Category: "Antibiotics", Description: "Pack of 21 capsules"},
		{Name: "Vitamin C 1000mg", GenericName: "Ascorbic acid", Price: 800, Quantity: 45, Category: "Supplements", Description: "Effervescent, 10 tablets"},
		{Name: "Ibuprofen 400mg", GenericName: "Ibuprofen", Price: 700, Quantity: 80, Category: "Painkillers", Description: "Pack of 24 tablets"},
	}

	for i := range starter {
		if err := s.CreateProduct(ctx, &starter[i]); err != nil {
			return err
		}
	}

	util.GetLogger().Info("Seeded starter inventory", zap.Int("products", len(starter)))
	return nil
}
