// Package history persists past question/answer exchanges in a local
// sqlite database so the CLI and the API can show what has been asked
// against each collection.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type QueryRecord struct {
	ID          string    `json:"id" gorm:"type:text;primaryKey"`
	Collection  string    `json:"collection" gorm:"index;not null"`
	Question    string    `json:"question" gorm:"type:text;not null"`
	Answer      string    `json:"answer" gorm:"type:text;not null"`
	SourceCount int       `json:"source_count"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (QueryRecord) TableName() string {
	return "query_history"
}

func (r *QueryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type DAO struct {
	DB *gorm.DB
}

// Open creates (or opens) the sqlite file at path and migrates the schema.
func Open(path string) (*DAO, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return New(db)
}

func New(db *gorm.DB) (*DAO, error) {
	if err := db.AutoMigrate(&QueryRecord{}); err != nil {
		return nil, err
	}
	return &DAO{DB: db}, nil
}

func (dao *DAO) Save(ctx context.Context, record *QueryRecord) error {
	return dao.DB.WithContext(ctx).Create(record).Error
}

// List returns the most recent exchanges first. A non-empty collection
// restricts the listing to that collection; limit <= 0 means no limit.
func (dao *DAO) List(ctx context.Context, collection string, limit int) ([]QueryRecord, error) {
	q := dao.DB.WithContext(ctx).Order("created_at desc")
	if collection != "" {
		q = q.Where("collection = ?", collection)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []QueryRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Clear deletes history, either for one collection or everything.
func (dao *DAO) Clear(ctx context.Context, collection string) (int64, error) {
	q := dao.DB.WithContext(ctx)
	if collection != "" {
		q = q.Where("collection = ?", collection)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Delete(&QueryRecord{})
	return res.RowsAffected, res.Error
}

func (dao *DAO) Close() {
	sqlDB, err := dao.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
