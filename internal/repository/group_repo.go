package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/model"
)

// GroupRepository 学生小组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id, deletedBy string) error
	List(ctx context.Context) ([]model.Group, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Group, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).Where("group_id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) Update(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("group_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *groupRepo) List(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *groupRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Where("? = ANY(student_ids)", studentID).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}
