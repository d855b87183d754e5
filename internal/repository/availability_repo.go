package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/model"
)

// AvailabilityRepository 讲师可用时间数据访问接口
type AvailabilityRepository interface {
	ListByLecturer(ctx context.Context, lecturerID string) ([]model.Availability, error)
	BatchCreate(ctx context.Context, items []model.Availability) error
	// DeleteByIDs 仅删除属于 lecturerID 的记录，返回实际删除条数
	DeleteByIDs(ctx context.Context, lecturerID string, ids []string) (int64, error)
}

type availabilityRepo struct {
	db *gorm.DB
}

// NewAvailabilityRepo 创建 AvailabilityRepository 实例
func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) ListByLecturer(ctx context.Context, lecturerID string) ([]model.Availability, error) {
	var items []model.Availability
	err := r.db.WithContext(ctx).
		Where("lecturer_id = ?", lecturerID).
		Order("day_id ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *availabilityRepo) BatchCreate(ctx context.Context, items []model.Availability) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *availabilityRepo) DeleteByIDs(ctx context.Context, lecturerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Availability{}).
		Where("availability_id IN ? AND lecturer_id = ?", ids, lecturerID).
		Updates(map[string]interface{}{
			"deleted_by": lecturerID,
			"deleted_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}
