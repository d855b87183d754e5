package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/internal/timegrid"
	pkgerrors "github.com/Oskru/study-smart/pkg/errors"
)

// ── 选择会话 ──────────────────────────────────────────────
//
// 服务端持有的 SlotGrid：每个会话一份 JSON 快照（资格、历史、已提交记录、
// 当前选择与删除集合），每次请求由快照重建 Grid，操作后写回并刷新 TTL。
// ─────────────────────────────────────────────────────────────

var (
	ErrCourseRequired   = errors.New("偏好会话必须指定课程")
	ErrEmptySelection   = errors.New("当前没有选择任何时间")
	ErrNothingToDelete  = errors.New("当前没有待删除的记录")
	ErrInvalidCell      = errors.New("格子不在目录中")
	ErrWrongSessionMode = errors.New("当前模式不支持该操作")
)

// SelectionService 选择会话业务接口
type SelectionService interface {
	Open(ctx context.Context, actor Actor, req *dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error)
	Toggle(ctx context.Context, actor Actor, id string, req *dto.ToggleRequest) (*dto.ToggleResponse, error)
	SwitchMode(ctx context.Context, actor Actor, id string, mode string) (*dto.SessionResponse, error)
	// Submit add 模式提交当前选择，delete 模式删除选中的记录；成功后清空会话选择
	Submit(ctx context.Context, actor Actor, id string) (*dto.SubmitSessionResponse, error)
	Close(ctx context.Context, actor Actor, id string) error
}

// sessionSnapshot 会话快照
type sessionSnapshot struct {
	ID            string                        `json:"id"`
	OwnerID       string                        `json:"owner_id"`
	Purpose       string                        `json:"purpose"`
	CourseID      string                        `json:"course_id,omitempty"`
	Mode          timegrid.Mode                 `json:"mode"`
	Privileged    bool                          `json:"privileged"`
	MinSelections int                           `json:"min_selections,omitempty"`
	Eligibility   []timegrid.EligibilityEntry   `json:"eligibility"`
	Past          []timegrid.PastSelection      `json:"past"`
	Committed     []timegrid.CommittedSelection `json:"committed"`
	Selection     map[string][]string           `json:"selection"`
	Deletions     []string                      `json:"deletions"`
}

// session 快照重建后的运行时状态
type session struct {
	snap      *sessionSnapshot
	grid      *timegrid.Grid
	deletions timegrid.DeletionSet
	// raw 读取时的快照原文，写回时据此检测并发修改；新建会话为 nil
	raw []byte
}

// maxSessionRetries 并发修改冲突时的最大尝试次数
const maxSessionRetries = 3

type selectionService struct {
	repo         *repository.Repository
	catalog      *timegrid.Catalog
	store        SessionStore
	availability AvailabilityService
	preference   PreferenceService
	ttl          time.Duration
	logger       *zap.Logger
}

// NewSelectionService 创建 SelectionService 实例
func NewSelectionService(
	repo *repository.Repository,
	catalog *timegrid.Catalog,
	store SessionStore,
	availability AvailabilityService,
	preference PreferenceService,
	ttl time.Duration,
	logger *zap.Logger,
) SelectionService {
	return &selectionService{
		repo:         repo,
		catalog:      catalog,
		store:        store,
		availability: availability,
		preference:   preference,
		ttl:          ttl,
		logger:       logger,
	}
}

// ────────────────────── Open ──────────────────────

func (s *selectionService) Open(ctx context.Context, actor Actor, req *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	snap := &sessionSnapshot{
		ID:        uuid.NewString(),
		OwnerID:   actor.UserID,
		Purpose:   req.Purpose,
		Mode:      timegrid.Mode(req.Mode),
		Selection: map[string][]string{},
	}
	if !snap.Mode.Valid() {
		snap.Mode = timegrid.ModeAdd
	}

	switch req.Purpose {
	case dto.PurposeAvailability:
		if actor.Role != model.RoleLecturer {
			return nil, pkgerrors.ErrPermissionDenied
		}
		snap.Privileged = true
	case dto.PurposePreference:
		if actor.Role != model.RoleStudent {
			return nil, pkgerrors.ErrPermissionDenied
		}
		if req.CourseID == "" {
			return nil, ErrCourseRequired
		}
		snap.CourseID = req.CourseID
	default:
		return nil, fmt.Errorf("%w: 未知用途 %q", ErrWrongSessionMode, req.Purpose)
	}

	if err := s.loadContext(ctx, snap); err != nil {
		return nil, err
	}

	sess := s.build(snap)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("选择会话已打开",
		zap.String("session_id", snap.ID),
		zap.String("owner_id", snap.OwnerID),
		zap.String("purpose", snap.Purpose),
		zap.String("mode", string(snap.Mode)),
	)
	return s.view(sess), nil
}

// ────────────────────── Get / Toggle / SwitchMode ──────────────────────

func (s *selectionService) Get(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error) {
	// 读取也写回以刷新 TTL
	sess, err := s.update(ctx, actor, id, func(*session) error { return nil })
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *selectionService) Toggle(ctx context.Context, actor Actor, id string, req *dto.ToggleRequest) (*dto.ToggleResponse, error) {
	if !s.catalog.Contains(req.Day, req.Hour) {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidCell, req.Day, req.Hour)
	}

	var t timegrid.Toggle
	sess, err := s.update(ctx, actor, id, func(sess *session) error {
		t = sess.grid.Toggle(req.Day, req.Hour)
		sess.deletions.Apply(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.ToggleResponse{
		Changed:  t.Changed,
		DeleteID: t.DeleteID,
		Session:  *s.view(sess),
	}, nil
}

func (s *selectionService) SwitchMode(ctx context.Context, actor Actor, id string, mode string) (*dto.SessionResponse, error) {
	m := timegrid.Mode(mode)
	if !m.Valid() {
		return nil, fmt.Errorf("%w: 未知模式 %q", ErrWrongSessionMode, mode)
	}

	sess, err := s.update(ctx, actor, id, func(sess *session) error {
		sess.grid.SetMode(m, sess.deletions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// ────────────────────── Submit ──────────────────────

func (s *selectionService) Submit(ctx context.Context, actor Actor, id string) (*dto.SubmitSessionResponse, error) {
	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.SubmitSessionResponse{Mode: string(sess.grid.Mode()), IDs: []string{}}

	switch sess.grid.Mode() {
	case timegrid.ModeAdd:
		items := dto.FromPayload(sess.grid.Payload())
		if len(items) == 0 {
			return nil, ErrEmptySelection
		}
		ids, err := s.submitItems(ctx, sess.snap, items)
		if err != nil {
			return nil, err
		}
		resp.Created = len(ids)
		resp.IDs = ids

	case timegrid.ModeDelete:
		ids := sess.deletions.IDs()
		if len(ids) == 0 {
			return nil, ErrNothingToDelete
		}
		n, err := s.deleteRecords(ctx, sess.snap, ids)
		if err != nil {
			return nil, err
		}
		resp.Deleted = n
		resp.IDs = ids
	}

	// 提交成功：以数据库为准刷新历史与已提交记录，并清空选择
	if err := s.loadContext(ctx, sess.snap); err != nil {
		return nil, err
	}
	sess.snap.Selection = map[string][]string{}
	sess.snap.Deletions = nil
	sess.snap.Mode = sess.grid.Mode()
	if err := s.save(ctx, s.build(sess.snap)); err != nil {
		return nil, err
	}

	s.logger.Info("选择会话已提交",
		zap.String("session_id", id),
		zap.String("mode", resp.Mode),
		zap.Int("created", resp.Created),
		zap.Int("deleted", resp.Deleted),
	)
	return resp, nil
}

func (s *selectionService) submitItems(ctx context.Context, snap *sessionSnapshot, items []dto.SelectionItem) ([]string, error) {
	var ids []string
	switch snap.Purpose {
	case dto.PurposeAvailability:
		created, err := s.availability.Submit(ctx, snap.OwnerID, items)
		if err != nil {
			return nil, err
		}
		for _, c := range created {
			ids = append(ids, c.ID)
		}
	default:
		created, err := s.preference.Submit(ctx, snap.OwnerID, &dto.SubmitPreferenceRequest{
			CourseID: snap.CourseID,
			Items:    items,
		})
		if err != nil {
			return nil, err
		}
		for _, c := range created {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *selectionService) deleteRecords(ctx context.Context, snap *sessionSnapshot, ids []string) (int, error) {
	if snap.Purpose == dto.PurposeAvailability {
		return s.availability.Delete(ctx, snap.OwnerID, ids)
	}
	return s.preference.Delete(ctx, snap.OwnerID, ids)
}

// ────────────────────── Close ──────────────────────

func (s *selectionService) Close(ctx context.Context, actor Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, id)
}

// ── 内部辅助方法 ──

// loadContext 从数据库加载资格、历史与已提交记录
func (s *selectionService) loadContext(ctx context.Context, snap *sessionSnapshot) error {
	snap.Eligibility = []timegrid.EligibilityEntry{}
	snap.Past = []timegrid.PastSelection{}
	snap.Committed = []timegrid.CommittedSelection{}

	switch snap.Purpose {
	case dto.PurposeAvailability:
		items, err := s.repo.Availability.ListByLecturer(ctx, snap.OwnerID)
		if err != nil {
			s.logger.Error("加载可用时间失败", zap.String("lecturer_id", snap.OwnerID), zap.Error(err))
			return err
		}
		for _, a := range items {
			s.addRecord(snap, a.AvailabilityID, a.DayName, recordHours(s.catalog, a.Times, a.TimeRanges))
		}

	case dto.PurposePreference:
		eligibility, err := s.preference.Eligibility(ctx, snap.CourseID)
		if err != nil {
			return err
		}
		ok, err := studentCanSee(ctx, s.repo, snap.OwnerID, snap.CourseID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCourseNotVisible
		}
		snap.Eligibility = eligibility.Entries
		snap.MinSelections = eligibility.MinSelections

		items, err := s.repo.Preference.ListByStudent(ctx, snap.OwnerID, snap.CourseID)
		if err != nil {
			s.logger.Error("加载偏好失败", zap.String("student_id", snap.OwnerID), zap.Error(err))
			return err
		}
		for _, p := range items {
			s.addRecord(snap, p.PreferenceID, p.DayName, recordHours(s.catalog, p.Times, p.TimeRanges))
		}
	}
	return nil
}

// addRecord 已提交记录同时作为历史选择与可删除记录
func (s *selectionService) addRecord(snap *sessionSnapshot, id, day string, hours []string) {
	snap.Past = append(snap.Past, timegrid.PastSelection{Day: day, Hours: hours})
	snap.Committed = append(snap.Committed, timegrid.CommittedSelection{ID: id, Day: day, Hours: hours})
}

// build 由快照重建 Grid 与删除集合
func (s *selectionService) build(snap *sessionSnapshot) *session {
	g := timegrid.New(s.catalog)
	g.Initialize(timegrid.Options{
		Eligibility: snap.Eligibility,
		Past:        snap.Past,
		Committed:   snap.Committed,
		Mode:        snap.Mode,
		Privileged:  snap.Privileged,
	})
	g.Restore(snap.Selection)

	deletions := timegrid.NewDeletionSet()
	if g.Mode() == timegrid.ModeDelete {
		for _, id := range snap.Deletions {
			deletions[id] = struct{}{}
		}
	}
	return &session{snap: snap, grid: g, deletions: deletions}
}

func (s *selectionService) load(ctx context.Context, actor Actor, id string) (*session, error) {
	data, err := s.store.LoadSession(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrSessionNotFound) {
			return nil, err
		}
		s.logger.Error("读取选择会话失败", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("选择会话快照损坏", zap.String("session_id", id), zap.Error(err))
		return nil, pkgerrors.ErrSessionNotFound
	}
	// 他人的会话按不存在处理
	if snap.OwnerID != actor.UserID {
		return nil, pkgerrors.ErrSessionNotFound
	}
	sess := s.build(&snap)
	sess.raw = data
	return sess, nil
}

// update 读取、修改并写回会话；快照在此期间被其他请求改写时重新读取后重放 fn
func (s *selectionService) update(ctx context.Context, actor Actor, id string, fn func(*session) error) (*session, error) {
	for attempt := 1; ; attempt++ {
		sess, err := s.load(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		if err := fn(sess); err != nil {
			return nil, err
		}
		err = s.save(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, pkgerrors.ErrSessionConflict) || attempt >= maxSessionRetries {
			return nil, err
		}
		s.logger.Debug("选择会话写入冲突，重试", zap.String("session_id", id), zap.Int("attempt", attempt))
	}
}

func (s *selectionService) save(ctx context.Context, sess *session) error {
	sess.snap.Mode = sess.grid.Mode()
	sess.snap.Selection = sess.grid.Selection()
	sess.snap.Deletions = sess.deletions.IDs()

	data, err := json.Marshal(sess.snap)
	if err != nil {
		return err
	}
	if sess.raw == nil {
		err = s.store.SaveSession(ctx, sess.snap.ID, data, s.ttl)
	} else {
		err = s.store.SwapSession(ctx, sess.snap.ID, sess.raw, data, s.ttl)
	}
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrSessionConflict) {
			s.logger.Error("保存选择会话失败", zap.String("session_id", sess.snap.ID), zap.Error(err))
		}
		return err
	}
	sess.raw = data
	return nil
}

// view 会话当前视图
func (s *selectionService) view(sess *session) *dto.SessionResponse {
	g := sess.grid
	cells := make(map[string]string)
	selected := 0
	for _, day := range s.catalog.Days() {
		for _, h := range s.catalog.Hours() {
			if class := g.Classify(day, h); class != timegrid.CellNone {
				cells[timegrid.SlotKey(day, h)] = class.String()
			}
			if g.IsSelected(day, h) {
				selected++
			}
		}
	}

	return &dto.SessionResponse{
		ID:            sess.snap.ID,
		Purpose:       sess.snap.Purpose,
		CourseID:      sess.snap.CourseID,
		Mode:          string(g.Mode()),
		Privileged:    g.Privileged(),
		Days:          s.catalog.Days(),
		Hours:         s.catalog.Hours(),
		Cells:         cells,
		Items:         g.Payload(),
		Deletions:     sess.deletions.IDs(),
		MinSelections: sess.snap.MinSelections,
		Selected:      selected,
	}
}
