// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"github.com/rubybelly/lechon-cart/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Entry
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Entry) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	models := []interface{}{
		&catalog.Offering{},
	}

	for _, model := range models {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for catalog queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_offerings_type_active ON offerings(product_type, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_offerings_name ON offerings(name)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.log.Infof("Created %d indexes (%d failed)", successCount, failCount)
	if failCount > 0 {
		return fmt.Errorf("%d of %d indexes failed", failCount, len(indexes))
	}
	return nil
}

// SeedInitialData inserts a development menu
func (m *Migration) SeedInitialData() error {
	servings := func(n int) *int { return &n }

	offerings := []catalog.Offering{
		{PriceID: "viand-dinuguan", ProductType: cart.Viands, Name: "Dinuguan", Price: decimal.NewFromInt(85), ImageURL: "/images/dinuguan.png", AvailableQuantity: servings(20), IsActive: true},
		{PriceID: "viand-kare-kare", ProductType: cart.Viands, Name: "Kare-Kare", Price: decimal.NewFromInt(120), ImageURL: "/images/kare-kare.png", AvailableQuantity: servings(12), IsActive: true},
		{PriceID: "viand-sinigang", ProductType: cart.Viands, Name: "Sinigang na Baboy", Price: decimal.NewFromInt(95), ImageURL: "/images/sinigang.png", AvailableQuantity: servings(15), IsActive: true},
		{PriceID: "lechon-belly-1kg", ProductType: cart.Lechon, Name: "Lechon Belly (1kg)", Price: decimal.NewFromInt(950), ImageURL: "/images/belly.png", Quantity: servings(5), IsActive: true},
		{PriceID: "lechon-whole-small", ProductType: cart.Lechon, Name: "Whole Lechon (Small)", Price: decimal.NewFromInt(6500), ImageURL: "/images/whole-small.png", Quantity: servings(2), IsActive: true},
	}

	for _, offering := range offerings {
		var existing catalog.Offering
		err := m.db.Where("price_id = ? AND product_type = ?", offering.PriceID, offering.ProductType).First(&existing).Error
		if err == nil {
			m.log.Debugf("Offering already exists: %s", offering.Name)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check offering %s: %w", offering.PriceID, err)
		}
		if err := m.db.Create(&offering).Error; err != nil {
			return fmt.Errorf("failed to seed offering %s: %w", offering.PriceID, err)
		}
		m.log.Infof("Created offering: %s", offering.Name)
	}

	return nil
}

// GetTableInfo logs row counts for every public table
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		m.log.WithFields(logrus.Fields{"table": table, "records": count}).Info("Table info")
	}
	return nil
}
