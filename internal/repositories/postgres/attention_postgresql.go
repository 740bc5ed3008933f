package postgres

import (
	"context"

	"github.com/iiuc-platform/interview-service/internal/models"
	"github.com/iiuc-platform/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type AttentionLogPostgreSQL struct {
	db *gorm.DB
}

func NewAttentionLogPostgreSQL(db *gorm.DB) repositories.AttentionLogRepository {
	return &AttentionLogPostgreSQL{db: db}
}

func (r *AttentionLogPostgreSQL) Create(ctx context.Context, log *models.AttentionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AttentionLogPostgreSQL) GetBySession(ctx context.Context, sessionID string) ([]*models.AttentionLog, error) {
	var logs []*models.AttentionLog
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *AttentionLogPostgreSQL) CountBySession(ctx context.Context, sessionID string) (total, attentive int64, err error) {
	base := r.db.WithContext(ctx).Model(&models.AttentionLog{}).Where("session_id = ?", sessionID)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = base.Session(&gorm.Session{}).Where("attention_detected = ?", true).Count(&attentive).Error; err != nil {
		return 0, 0, err
	}
	return total, attentive, nil
}
