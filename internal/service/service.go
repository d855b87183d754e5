package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Oskru/study-smart/config"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/internal/timegrid"
	"github.com/Oskru/study-smart/pkg/jwt"
	"github.com/Oskru/study-smart/pkg/messaging"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Course       CourseService
	Group        GroupService
	Availability AvailabilityService
	Preference   PreferenceService
	Selection    SelectionService
	Vote         VoteService
	Export       ExportService
}

// TokenStore Token 黑名单存储（Redis 实现见 pkg/redis）
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Deps 构造 Service 聚合所需的外部依赖
// Tokens / Sessions 为 nil 时分别跳过黑名单、退化为进程内会话存储
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Catalog   *timegrid.Catalog
	Tokens    TokenStore
	Sessions  SessionStore
	Publisher messaging.Publisher
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	if d.Publisher == nil {
		d.Publisher = messaging.NopPublisher{}
	}
	if d.Sessions == nil {
		d.Sessions = NewMemorySessionStore()
	}

	// 配置已校验过时区，这里失败时退回 UTC
	loc, err := d.Config.Catalog.Location()
	if err != nil {
		loc = time.UTC
	}

	availability := NewAvailabilityService(d.Repo, d.Catalog, loc, d.Publisher, d.Logger)
	preference := NewPreferenceService(d.Repo, d.Catalog, d.Publisher, d.Logger)
	vote := NewVoteService(d.Repo, d.Catalog, d.Logger)

	return &Service{
		Auth:         NewAuthService(&d.Config.Auth, d.Repo, d.JWT, d.Tokens, d.Logger),
		User:         NewUserService(d.Repo, d.Logger),
		Course:       NewCourseService(d.Repo, d.Logger),
		Group:        NewGroupService(d.Repo, d.Logger),
		Availability: availability,
		Preference:   preference,
		Selection: NewSelectionService(d.Repo, d.Catalog, d.Sessions, availability, preference,
			d.Config.Selection.SessionTTL, d.Logger),
		Vote:   vote,
		Export: NewExportService(vote, d.Catalog, d.Logger),
	}
}

// Actor 发起操作的已认证用户
type Actor struct {
	UserID string
	Role   string
}

// publish 发布领域事件；失败只记录日志，不影响主流程
func publish(ctx context.Context, p messaging.Publisher, logger *zap.Logger, eventType, actorID string, payload interface{}) {
	if err := p.Publish(ctx, messaging.NewEvent(eventType, actorID, payload)); err != nil {
		logger.Warn("领域事件发布失败",
			zap.String("type", eventType),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
	}
}
