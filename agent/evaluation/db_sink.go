package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecordModel is the gorm row for one evaluation record. BatchID groups the
// rows written by one harness run.
type RecordModel struct {
	ID      uint   `gorm:"primaryKey"`
	BatchID string `gorm:"column:batch_id;size:36;index"`

	types.EvaluationRecord `gorm:"embedded"`

	CreatedAt time.Time
}

// TableName 固定表名
func (RecordModel) TableName() string { return "evaluation_records" }

// DBSink writes each record as one row of evaluation_records.
type DBSink struct {
	db      *gorm.DB
	batchID string
	logger  *zap.Logger
}

// NewDBSink migrates the table and returns a sink tagging rows with
// batchID.
func NewDBSink(db *gorm.DB, batchID string, logger *zap.Logger) (*DBSink, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &DBSink{
		db:      db,
		batchID: batchID,
		logger:  logger.With(zap.String("component", "db_sink")),
	}, nil
}

// Write inserts one row.
func (s *DBSink) Write(ctx context.Context, rec types.EvaluationRecord) error {
	row := RecordModel{BatchID: s.batchID, EvaluationRecord: rec}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert evaluation record: %w", err)
	}
	s.logger.Debug("record stored", zap.Uint("id", row.ID), zap.Int("task_id", rec.TaskID))
	return nil
}

// Records returns the rows of one batch in insertion order.
func (s *DBSink) Records(ctx context.Context, batchID string) ([]types.EvaluationRecord, error) {
	var rows []RecordModel
	if err := s.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query evaluation records: %w", err)
	}
	out := make([]types.EvaluationRecord, len(rows))
	for i, r := range rows {
		out[i] = r.EvaluationRecord
	}
	return out, nil
}

// Close closes the underlying connection pool.
func (s *DBSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
