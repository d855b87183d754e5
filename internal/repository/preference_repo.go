package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/model"
)

// PreferenceRepository 学生偏好数据访问接口
type PreferenceRepository interface {
	// ListByStudent courseID 为空时返回该学生全部课程的偏好
	ListByStudent(ctx context.Context, studentID, courseID string) ([]model.Preference, error)
	// ListByStudents studentIDs 为 nil 时不过滤学生；courseID 为空时不过滤课程
	ListByStudents(ctx context.Context, studentIDs []string, courseID string) ([]model.Preference, error)
	BatchCreate(ctx context.Context, items []model.Preference) error
	DeleteByIDs(ctx context.Context, studentID string, ids []string) (int64, error)
}

type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo 创建 PreferenceRepository 实例
func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) ListByStudent(ctx context.Context, studentID, courseID string) ([]model.Preference, error) {
	var items []model.Preference
	db := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}
	err := db.Order("day_id ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (r *preferenceRepo) ListByStudents(ctx context.Context, studentIDs []string, courseID string) ([]model.Preference, error) {
	var items []model.Preference
	if studentIDs != nil && len(studentIDs) == 0 {
		return items, nil
	}
	db := r.db.WithContext(ctx)
	if studentIDs != nil {
		db = db.Where("student_id IN ?", studentIDs)
	}
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}
	err := db.Order("student_id ASC, day_id ASC").Find(&items).Error
	return items, err
}

func (r *preferenceRepo) BatchCreate(ctx context.Context, items []model.Preference) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Course").Create(&items).Error
}

func (r *preferenceRepo) DeleteByIDs(ctx context.Context, studentID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Preference{}).
		Where("preference_id IN ? AND student_id = ?", ids, studentID).
		Updates(map[string]interface{}{
			"deleted_by": studentID,
			"deleted_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}
