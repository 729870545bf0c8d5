package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qudratrading/mawared/internal/domain"
)

type LeadRepo struct{ db *gorm.DB }

func NewLeadRepo(db *gorm.DB) *LeadRepo { return &LeadRepo{db: db} }

func (r *LeadRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Lead{})
}

func (r *LeadRepo) Save(ctx context.Context, l *domain.Lead) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LeadRepo) ListRecent(ctx context.Context, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []domain.Lead
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
