package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
)

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseNotVisible = errors.New("该课程不属于你所在的小组")
	ErrLecturerNotFound = errors.New("讲师不存在或未确认")
	ErrCourseNoLecturer = errors.New("课程尚未指派讲师")
	ErrCourseScheduled  = errors.New("课程已排定，不能再修改偏好")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	List(ctx context.Context) ([]dto.CourseResponse, error)
	AssignLecturer(ctx context.Context, id string, req *dto.AssignLecturerRequest) (*dto.CourseResponse, error)
	// ListForStudent 学生所在小组关联的课程
	ListForStudent(ctx context.Context, studentID string) ([]dto.CourseResponse, error)
	ListForLecturer(ctx context.Context, lecturerID string) ([]dto.CourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if req.LecturerID != nil {
		if err := s.checkLecturer(ctx, *req.LecturerID); err != nil {
			return nil, err
		}
	}

	course := &model.Course{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		LecturerID:  req.LecturerID,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, course.CourseID)
}

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := getCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := getCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Scheduled != nil {
		course.Scheduled = *req.Scheduled
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := getCourse(ctx, s.repo, id); err != nil {
		return err
	}
	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	return toCourseResponses(courses), nil
}

func (s *courseService) AssignLecturer(ctx context.Context, id string, req *dto.AssignLecturerRequest) (*dto.CourseResponse, error) {
	course, err := getCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkLecturer(ctx, req.LecturerID); err != nil {
		return nil, err
	}

	lecturerID := req.LecturerID
	course.LecturerID = &lecturerID
	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("指派讲师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已指派讲师", zap.String("course_id", id), zap.String("lecturer_id", lecturerID))
	return s.GetByID(ctx, id)
}

func (s *courseService) ListForStudent(ctx context.Context, studentID string) ([]dto.CourseResponse, error) {
	courses, err := studentCourses(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Error("查询学生课程失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return toCourseResponses(courses), nil
}

func (s *courseService) ListForLecturer(ctx context.Context, lecturerID string) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.ListByLecturer(ctx, lecturerID)
	if err != nil {
		s.logger.Error("查询讲师课程失败", zap.String("lecturer_id", lecturerID), zap.Error(err))
		return nil, err
	}
	return toCourseResponses(courses), nil
}

// checkLecturer 指派对象必须是已确认的讲师
func (s *courseService) checkLecturer(ctx context.Context, lecturerID string) error {
	user, err := s.repo.User.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLecturerNotFound
		}
		return err
	}
	if user.Role != model.RoleLecturer || !user.Confirmed {
		return ErrLecturerNotFound
	}
	return nil
}

// ── 内部辅助方法 ──

func getCourse(ctx context.Context, repo *repository.Repository, id string) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// studentCourses 学生可见课程：课程名与所在小组同名，或课程在小组的课程列表中
func studentCourses(ctx context.Context, repo *repository.Repository, studentID string) ([]model.Course, error) {
	groups, err := repo.Group.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	var ids []string
	for _, g := range groups {
		names = append(names, g.Name)
		ids = append(ids, g.CourseIDs...)
	}
	return repo.Course.ListByNamesOrIDs(ctx, names, ids)
}

// studentCanSee 判断课程是否对学生可见
func studentCanSee(ctx context.Context, repo *repository.Repository, studentID, courseID string) (bool, error) {
	courses, err := studentCourses(ctx, repo, studentID)
	if err != nil {
		return false, err
	}
	for _, c := range courses {
		if c.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:          c.CourseID,
		Name:        c.Name,
		Description: c.Description,
		Duration:    c.Duration,
		Scheduled:   c.Scheduled,
	}
	if c.Lecturer != nil {
		resp.Lecturer = toUserResponse(c.Lecturer)
	}
	return resp
}

func toCourseResponses(courses []model.Course) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, *toCourseResponse(&courses[i]))
	}
	return out
}
