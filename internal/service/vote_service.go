package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/internal/timegrid"
)

// VoteService 偏好投票统计接口
type VoteService interface {
	// Tally 统计小组（可选）学生在课程（可选）上的偏好热力矩阵
	Tally(ctx context.Context, req *dto.TallyRequest) (*dto.TallyResponse, error)
}

type voteService struct {
	repo    *repository.Repository
	catalog *timegrid.Catalog
	logger  *zap.Logger
}

// NewVoteService 创建 VoteService 实例
func NewVoteService(repo *repository.Repository, catalog *timegrid.Catalog, logger *zap.Logger) VoteService {
	return &voteService{repo: repo, catalog: catalog, logger: logger}
}

func (s *voteService) Tally(ctx context.Context, req *dto.TallyRequest) (*dto.TallyResponse, error) {
	var (
		studentIDs []string
		opts       []timegrid.AggregateOption
	)

	if req.GroupID != "" {
		group, err := s.repo.Group.GetByID(ctx, req.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, err
		}
		// 空小组得到空集合而非 nil，避免退化为统计全部学生
		studentIDs = append([]string{}, group.StudentIDs...)
		opts = append(opts, timegrid.WithOwners(studentIDs...))
	}
	if req.CourseID != "" {
		if _, err := getCourse(ctx, s.repo, req.CourseID); err != nil {
			return nil, err
		}
		opts = append(opts, timegrid.WithCategory(req.CourseID))
	}

	prefs, err := s.repo.Preference.ListByStudents(ctx, studentIDs, req.CourseID)
	if err != nil {
		s.logger.Error("查询偏好失败", zap.Error(err))
		return nil, err
	}

	records := make([]timegrid.VoteRecord, 0, len(prefs))
	for _, p := range prefs {
		records = append(records, timegrid.VoteRecord{
			OwnerID:     p.StudentID,
			CategoryKey: p.CourseID,
			Day:         p.DayName,
			Hours:       recordHours(s.catalog, p.Times, p.TimeRanges),
		})
	}

	tally := timegrid.Aggregate(records, opts...)
	return &dto.TallyResponse{
		GroupID:  req.GroupID,
		CourseID: req.CourseID,
		Days:     s.catalog.Days(),
		Hours:    s.catalog.Hours(),
		Matrix:   tally.Matrix(s.catalog),
		Max:      tally.Max(),
		Voters:   countVoters(s.catalog, records),
	}, nil
}

// countVoters 至少在目录内投出一票的不同学生数
func countVoters(catalog *timegrid.Catalog, records []timegrid.VoteRecord) int {
	voters := make(map[string]bool)
	for _, r := range records {
		for _, h := range r.Hours {
			if catalog.Contains(r.Day, h) {
				voters[r.OwnerID] = true
				break
			}
		}
	}
	return len(voters)
}
