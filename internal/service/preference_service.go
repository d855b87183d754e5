package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/internal/timegrid"
	"github.com/Oskru/study-smart/pkg/messaging"
)

var (
	ErrSelectionNotEligible = errors.New("所选时间不在讲师可用时间内")
)

// PreferenceService 学生偏好业务接口
type PreferenceService interface {
	ListMine(ctx context.Context, studentID, courseID string) ([]dto.PreferenceResponse, error)
	Submit(ctx context.Context, studentID string, req *dto.SubmitPreferenceRequest) ([]dto.PreferenceResponse, error)
	Delete(ctx context.Context, studentID string, ids []string) (int, error)
	// Eligibility 课程讲师的可用时间，作为学生可选范围
	Eligibility(ctx context.Context, courseID string) (*dto.EligibilityResponse, error)
}

type preferenceService struct {
	repo      *repository.Repository
	catalog   *timegrid.Catalog
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
func NewPreferenceService(
	repo *repository.Repository,
	catalog *timegrid.Catalog,
	publisher messaging.Publisher,
	logger *zap.Logger,
) PreferenceService {
	return &preferenceService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *preferenceService) ListMine(ctx context.Context, studentID, courseID string) ([]dto.PreferenceResponse, error) {
	items, err := s.repo.Preference.ListByStudent(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询偏好失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.PreferenceResponse, 0, len(items))
	for i := range items {
		out = append(out, toPreferenceResponse(&items[i]))
	}
	return out, nil
}

func (s *preferenceService) Submit(ctx context.Context, studentID string, req *dto.SubmitPreferenceRequest) ([]dto.PreferenceResponse, error) {
	if err := dto.ValidateItems(s.catalog, req.Items); err != nil {
		return nil, err
	}

	course, err := s.courseForStudent(ctx, studentID, req.CourseID)
	if err != nil {
		return nil, err
	}

	// 可选范围 = 讲师可用时间 ∪ 学生此前在该课程提交过的时间
	allowed, err := s.allowedSlots(ctx, course, studentID)
	if err != nil {
		return nil, err
	}
	for _, it := range req.Items {
		for _, h := range it.Times {
			if !allowed[timegrid.SlotKey(it.DayName, h)] {
				return nil, fmt.Errorf("%w: %s %s", ErrSelectionNotEligible, it.DayName, h)
			}
		}
	}

	records := make([]model.Preference, 0, len(req.Items))
	for _, it := range req.Items {
		records = append(records, model.Preference{
			StudentID:  studentID,
			CourseID:   course.CourseID,
			DayID:      it.DayID,
			DayName:    it.DayName,
			Times:      model.StringArray(it.Times),
			TimeRanges: model.RangeList(it.TimeRanges),
		})
	}
	if err := s.repo.Preference.BatchCreate(ctx, records); err != nil {
		s.logger.Error("保存偏好失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.PreferenceResponse, 0, len(records))
	for i := range records {
		out = append(out, toPreferenceResponse(&records[i]))
	}

	s.logger.Info("学生偏好已提交",
		zap.String("student_id", studentID),
		zap.String("course_id", course.CourseID),
		zap.Int("days", len(records)),
	)
	publish(ctx, s.publisher, s.logger, messaging.EventPreferenceSubmitted, studentID, out)
	return out, nil
}

func (s *preferenceService) Delete(ctx context.Context, studentID string, ids []string) (int, error) {
	n, err := s.repo.Preference.DeleteByIDs(ctx, studentID, dedupe(ids))
	if err != nil {
		s.logger.Error("删除偏好失败", zap.String("student_id", studentID), zap.Error(err))
		return 0, err
	}
	if n == 0 {
		return 0, ErrSelectionNotFound
	}
	publish(ctx, s.publisher, s.logger, messaging.EventSelectionDeleted, studentID, map[string]interface{}{
		"purpose": dto.PurposePreference,
		"ids":     ids,
	})
	return int(n), nil
}

func (s *preferenceService) Eligibility(ctx context.Context, courseID string) (*dto.EligibilityResponse, error) {
	course, err := getCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	entries, err := s.eligibilityEntries(ctx, course)
	if err != nil {
		return nil, err
	}

	resp := &dto.EligibilityResponse{
		CourseID:      course.CourseID,
		MinSelections: course.Duration,
		Entries:       entries,
	}
	if course.LecturerID != nil {
		resp.LecturerID = *course.LecturerID
	}
	return resp, nil
}

// ── 内部辅助方法 ──

// courseForStudent 校验课程存在、未排定且对学生可见
func (s *preferenceService) courseForStudent(ctx context.Context, studentID, courseID string) (*model.Course, error) {
	course, err := getCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	if course.Scheduled {
		return nil, ErrCourseScheduled
	}
	ok, err := studentCanSee(ctx, s.repo, studentID, courseID)
	if err != nil {
		s.logger.Error("校验课程可见性失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrCourseNotVisible
	}
	if course.LecturerID == nil {
		return nil, ErrCourseNoLecturer
	}
	return course, nil
}

// eligibilityEntries 课程讲师的可用时间；未指派讲师时为空
func (s *preferenceService) eligibilityEntries(ctx context.Context, course *model.Course) ([]timegrid.EligibilityEntry, error) {
	entries := []timegrid.EligibilityEntry{}
	if course.LecturerID == nil {
		return entries, nil
	}
	items, err := s.repo.Availability.ListByLecturer(ctx, *course.LecturerID)
	if err != nil {
		s.logger.Error("查询讲师可用时间失败", zap.String("lecturer_id", *course.LecturerID), zap.Error(err))
		return nil, err
	}
	for _, a := range items {
		entries = append(entries, timegrid.EligibilityEntry{
			Day:           a.DayName,
			DayID:         a.DayID,
			EligibleHours: recordHours(s.catalog, a.Times, a.TimeRanges),
			OwnerID:       a.LecturerID,
		})
	}
	return entries, nil
}

// allowedSlots 学生在该课程可选的 "{day}-{hour}" 集合
func (s *preferenceService) allowedSlots(ctx context.Context, course *model.Course, studentID string) (map[string]bool, error) {
	entries, err := s.eligibilityEntries(ctx, course)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool)
	for _, e := range entries {
		for _, h := range e.EligibleHours {
			allowed[timegrid.SlotKey(e.Day, h)] = true
		}
	}

	past, err := s.repo.Preference.ListByStudent(ctx, studentID, course.CourseID)
	if err != nil {
		return nil, err
	}
	for _, p := range past {
		for _, h := range recordHours(s.catalog, p.Times, p.TimeRanges) {
			allowed[timegrid.SlotKey(p.DayName, h)] = true
		}
	}
	return allowed, nil
}

func toPreferenceResponse(p *model.Preference) dto.PreferenceResponse {
	return dto.PreferenceResponse{
		ID:         p.PreferenceID,
		CourseID:   p.CourseID,
		DayID:      p.DayID,
		DayName:    p.DayName,
		Times:      []string(p.Times),
		TimeRanges: []timegrid.TimeRange(p.TimeRanges),
	}
}
