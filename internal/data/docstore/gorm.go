package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/survey-backend/internal/platform/logger"
)

// DocumentRow is the table backing GormMedium. One row per named document.
type DocumentRow struct {
	Name      string         `gorm:"primaryKey;size:64" json:"name"`
	Body      datatypes.JSON `gorm:"not null" json:"body"`
	Revision  int64          `gorm:"not null;default:1" json:"revision"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (DocumentRow) TableName() string { return "survey_documents" }

// GormMedium keeps the document as a JSON column of a single row, so each
// read and each replace is one statement.
type GormMedium struct {
	db   *gorm.DB
	name string
	log  *logger.Logger
}

func NewGormMedium(db *gorm.DB, name string, baseLog *logger.Logger) (*GormMedium, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm medium: nil db")
	}
	if name == "" {
		name = "survey-results"
	}
	if err := db.AutoMigrate(&DocumentRow{}); err != nil {
		return nil, fmt.Errorf("migrate survey_documents: %w", err)
	}
	return &GormMedium{
		db:   db,
		name: name,
		log:  baseLog.With("medium", "gorm", "dialect", db.Dialector.Name(), "document", name),
	}, nil
}

func (m *GormMedium) Describe() string { return m.db.Dialector.Name() + ":" + m.name }

func (m *GormMedium) Init(ctx context.Context, seed []byte) (bool, error) {
	row := &DocumentRow{Name: m.name, Body: datatypes.JSON(seed), Revision: 1}
	res := m.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, fmt.Errorf("insert document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	m.log.Debug("Created survey document")
	return true, nil
}

func (m *GormMedium) Load(ctx context.Context) ([]byte, error) {
	var row DocumentRow
	err := m.db.WithContext(ctx).Where("name = ?", m.name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			m.log.Debug("Survey document row missing")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return []byte(row.Body), nil
}

func (m *GormMedium) Save(ctx context.Context, doc []byte) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DocumentRow{}).
			Where("name = ?", m.name).
			Updates(map[string]interface{}{
				"body":       datatypes.JSON(doc),
				"revision":   gorm.Expr("revision + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("update document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		m.log.Warn("Saving survey document failed", "error", err)
	}
	return err
}

func (m *GormMedium) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
