package handler

import (
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/internal/timegrid"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Course       *CourseHandler
	Group        *GroupHandler
	Availability *AvailabilityHandler
	Preference   *PreferenceHandler
	Selection    *SelectionHandler
	Vote         *VoteHandler
	Export       *ExportHandler
	Catalog      *CatalogHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, catalog *timegrid.Catalog) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Course:       NewCourseHandler(svc.Course),
		Group:        NewGroupHandler(svc.Group),
		Availability: NewAvailabilityHandler(svc.Availability),
		Preference:   NewPreferenceHandler(svc.Preference),
		Selection:    NewSelectionHandler(svc.Selection),
		Vote:         NewVoteHandler(svc.Vote),
		Export:       NewExportHandler(svc.Export),
		Catalog:      NewCatalogHandler(catalog),
	}
}
