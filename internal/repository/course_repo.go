package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id, deletedBy string) error
	List(ctx context.Context) ([]model.Course, error)
	// ListByNamesOrIDs 名称在 names 中或 ID 在 ids 中的课程
	ListByNamesOrIDs(ctx context.Context, names, ids []string) ([]model.Course, error)
	ListByLecturer(ctx context.Context, lecturerID string) ([]model.Course, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Lecturer").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Lecturer").Save(course).Error
}

func (r *courseRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *courseRepo) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Lecturer").
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByNamesOrIDs(ctx context.Context, names, ids []string) ([]model.Course, error) {
	var courses []model.Course
	if len(names) == 0 && len(ids) == 0 {
		return courses, nil
	}
	db := r.db.WithContext(ctx).Preload("Lecturer")
	switch {
	case len(names) == 0:
		db = db.Where("course_id IN ?", ids)
	case len(ids) == 0:
		db = db.Where("name IN ?", names)
	default:
		db = db.Where("name IN ? OR course_id IN ?", names, ids)
	}
	err := db.
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByLecturer(ctx context.Context, lecturerID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("lecturer_id = ?", lecturerID).
		Order("name ASC").
		Find(&courses).Error
	return courses, err
}
