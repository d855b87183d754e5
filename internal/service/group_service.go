package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
)

var (
	ErrGroupNotFound   = errors.New("小组不存在")
	ErrInvalidStudents = errors.New("成员列表包含非学生用户")
)

// GroupService 学生小组业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GroupResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	List(ctx context.Context) ([]dto.GroupResponse, error)
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	students, err := s.checkStudents(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}

	group := &model.Group{
		Name:       req.Name,
		StudentIDs: students,
		CourseIDs:  dedupe(req.CourseIDs),
	}
	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("创建小组失败", zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

func (s *groupService) GetByID(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toGroupResponse(group), nil
}

func (s *groupService) Update(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	// 成员列表整体替换
	if req.StudentIDs != nil {
		students, err := s.checkStudents(ctx, req.StudentIDs)
		if err != nil {
			return nil, err
		}
		group.StudentIDs = students
	}
	if req.CourseIDs != nil {
		group.CourseIDs = dedupe(req.CourseIDs)
	}

	if err := s.repo.Group.Update(ctx, group); err != nil {
		s.logger.Error("更新小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

func (s *groupService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Group.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除小组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *groupService) List(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.List(ctx)
	if err != nil {
		s.logger.Error("列出小组失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, *toGroupResponse(&groups[i]))
	}
	return out, nil
}

func (s *groupService) get(ctx context.Context, id string) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// checkStudents 成员必须全部是学生，返回去重后的列表
func (s *groupService) checkStudents(ctx context.Context, ids []string) (model.StringArray, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return model.StringArray{}, nil
	}

	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(users))
	for _, u := range users {
		if u.Role == model.RoleStudent {
			found[u.UserID] = true
		}
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStudents, strings.Join(missing, ","))
	}
	return model.StringArray(ids), nil
}

// dedupe 保序去重
func dedupe(ids []string) model.StringArray {
	out := model.StringArray{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toGroupResponse(g *model.Group) *dto.GroupResponse {
	students := []string(g.StudentIDs)
	if students == nil {
		students = []string{}
	}
	courses := []string(g.CourseIDs)
	if courses == nil {
		courses = []string{}
	}
	return &dto.GroupResponse{
		ID:         g.GroupID,
		Name:       g.Name,
		StudentIDs: students,
		CourseIDs:  courses,
	}
}
