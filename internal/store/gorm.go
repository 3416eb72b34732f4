package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type collectionRow struct {
	Name      string `gorm:"primaryKey"`
	Data      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (collectionRow) TableName() string { return "collections" }

// OpenPostgres connects through GORM and makes sure the collections table exists.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)

	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, fmt.Errorf("migrate collections table: %w", err)
	}
	return db, nil
}

// GormBackend stores collections in a Postgres table through GORM.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row collectionRow
	err := b.db.WithContext(ctx).First(&row, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query collection %s: %w", key, err)
	}
	return []byte(row.Data), true, nil
}

func (b *GormBackend) PutMany(ctx context.Context, values map[string][]byte) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, data := range values {
			row := collectionRow{Name: key, Data: string(data), UpdatedAt: time.Now().UTC()}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upsert collection %s: %w", key, err)
			}
		}
		return nil
	})
}
