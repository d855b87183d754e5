package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/internal/timegrid"
	"github.com/Oskru/study-smart/pkg/messaging"
)

var (
	ErrSelectionNotFound = errors.New("记录不存在或不属于当前用户")
)

// AvailabilityService 讲师可用时间业务接口
type AvailabilityService interface {
	ListMine(ctx context.Context, lecturerID string) ([]dto.AvailabilityResponse, error)
	Submit(ctx context.Context, lecturerID string, items []dto.SelectionItem) ([]dto.AvailabilityResponse, error)
	// Delete 仅删除属于 lecturerID 的记录，返回删除条数
	Delete(ctx context.Context, lecturerID string, ids []string) (int, error)
	ImportICS(ctx context.Context, lecturerID string, reader io.Reader) (*dto.ImportICSResponse, error)
}

type availabilityService struct {
	repo      *repository.Repository
	catalog   *timegrid.Catalog
	loc       *time.Location
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例；loc 为 nil 时按 UTC 解析日历
func NewAvailabilityService(
	repo *repository.Repository,
	catalog *timegrid.Catalog,
	loc *time.Location,
	publisher messaging.Publisher,
	logger *zap.Logger,
) AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &availabilityService{
		repo:      repo,
		catalog:   catalog,
		loc:       loc,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *availabilityService) ListMine(ctx context.Context, lecturerID string) ([]dto.AvailabilityResponse, error) {
	items, err := s.repo.Availability.ListByLecturer(ctx, lecturerID)
	if err != nil {
		s.logger.Error("查询可用时间失败", zap.String("lecturer_id", lecturerID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.AvailabilityResponse, 0, len(items))
	for i := range items {
		out = append(out, toAvailabilityResponse(&items[i]))
	}
	return out, nil
}

func (s *availabilityService) Submit(ctx context.Context, lecturerID string, items []dto.SelectionItem) ([]dto.AvailabilityResponse, error) {
	if err := dto.ValidateItems(s.catalog, items); err != nil {
		return nil, err
	}

	records := make([]model.Availability, 0, len(items))
	for _, it := range items {
		records = append(records, model.Availability{
			LecturerID: lecturerID,
			DayID:      it.DayID,
			DayName:    it.DayName,
			Times:      model.StringArray(it.Times),
			TimeRanges: model.RangeList(it.TimeRanges),
		})
	}
	if err := s.repo.Availability.BatchCreate(ctx, records); err != nil {
		s.logger.Error("保存可用时间失败", zap.String("lecturer_id", lecturerID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.AvailabilityResponse, 0, len(records))
	for i := range records {
		out = append(out, toAvailabilityResponse(&records[i]))
	}

	s.logger.Info("讲师可用时间已提交", zap.String("lecturer_id", lecturerID), zap.Int("days", len(records)))
	publish(ctx, s.publisher, s.logger, messaging.EventAvailabilitySubmitted, lecturerID, out)
	return out, nil
}

func (s *availabilityService) Delete(ctx context.Context, lecturerID string, ids []string) (int, error) {
	n, err := s.repo.Availability.DeleteByIDs(ctx, lecturerID, dedupe(ids))
	if err != nil {
		s.logger.Error("删除可用时间失败", zap.String("lecturer_id", lecturerID), zap.Error(err))
		return 0, err
	}
	if n == 0 {
		return 0, ErrSelectionNotFound
	}
	publish(ctx, s.publisher, s.logger, messaging.EventSelectionDeleted, lecturerID, map[string]interface{}{
		"purpose": dto.PurposeAvailability,
		"ids":     ids,
	})
	return int(n), nil
}

func (s *availabilityService) ImportICS(ctx context.Context, lecturerID string, reader io.Reader) (*dto.ImportICSResponse, error) {
	parsed, err := parseAvailabilityICS(reader, s.catalog, s.loc)
	if err != nil {
		return nil, err
	}

	items, err := s.Submit(ctx, lecturerID, parsed.Items)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ICS 导入完成",
		zap.String("lecturer_id", lecturerID),
		zap.Int("events", parsed.Events),
		zap.Int("skipped", parsed.Skipped),
	)
	return &dto.ImportICSResponse{
		Events:  parsed.Events,
		Skipped: parsed.Skipped,
		Items:   items,
	}, nil
}

// ── 内部辅助方法 ──

// recordHours 记录的小时集合；times 缺失时由区间展开
func recordHours(catalog *timegrid.Catalog, times model.StringArray, ranges model.RangeList) []string {
	if len(times) > 0 {
		return []string(times)
	}
	return catalog.Expand([]timegrid.TimeRange(ranges))
}

func toAvailabilityResponse(a *model.Availability) dto.AvailabilityResponse {
	return dto.AvailabilityResponse{
		ID:         a.AvailabilityID,
		LecturerID: a.LecturerID,
		DayID:      a.DayID,
		DayName:    a.DayName,
		Times:      []string(a.Times),
		TimeRanges: []timegrid.TimeRange(a.TimeRanges),
	}
}
