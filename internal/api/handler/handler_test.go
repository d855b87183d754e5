package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/api/middleware"
	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/internal/timegrid"
	pkgerrors "github.com/Oskru/study-smart/pkg/errors"
	"github.com/Oskru/study-smart/pkg/jwt"
	"github.com/Oskru/study-smart/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testCourseID = "6f1c2a9e-4b3d-4c2a-9f7e-1a2b3c4d5e6f"
	testRecordID = "0b8e7d6c-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	registerErr   error
	refreshResult *dto.TokenResponse
	refreshErr    error
	loggedOut     *jwt.Claims
	meErr         error
	confirmErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &dto.UserResponse{ID: "u-new", Name: req.Name, Email: req.Email, Role: req.Role}, nil
}
func (m *mockAuthService) Refresh(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.loggedOut = claims
	return nil
}
func (m *mockAuthService) Me(_ context.Context, userID string) (*dto.UserResponse, error) {
	if m.meErr != nil {
		return nil, m.meErr
	}
	return &dto.UserResponse{ID: userID}, nil
}
func (m *mockAuthService) ConfirmLecturer(_ context.Context, id string) (*dto.UserResponse, error) {
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return &dto.UserResponse{ID: id, Role: "lecturer", Confirmed: true}, nil
}

// ── Mock CourseService ──

type mockCourseService struct {
	called string
	err    error
}

func (m *mockCourseService) Create(_ context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	return &dto.CourseResponse{ID: testCourseID, Name: req.Name, Duration: req.Duration}, m.err
}
func (m *mockCourseService) GetByID(_ context.Context, id string) (*dto.CourseResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CourseResponse{ID: id}, nil
}
func (m *mockCourseService) Update(_ context.Context, id string, _ *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	return &dto.CourseResponse{ID: id}, m.err
}
func (m *mockCourseService) Delete(_ context.Context, _, _ string) error { return m.err }
func (m *mockCourseService) List(_ context.Context) ([]dto.CourseResponse, error) {
	m.called = "all"
	return []dto.CourseResponse{}, m.err
}
func (m *mockCourseService) AssignLecturer(_ context.Context, id string, _ *dto.AssignLecturerRequest) (*dto.CourseResponse, error) {
	return &dto.CourseResponse{ID: id}, m.err
}
func (m *mockCourseService) ListForStudent(_ context.Context, _ string) ([]dto.CourseResponse, error) {
	m.called = "student"
	return []dto.CourseResponse{}, m.err
}
func (m *mockCourseService) ListForLecturer(_ context.Context, _ string) ([]dto.CourseResponse, error) {
	m.called = "lecturer"
	return []dto.CourseResponse{}, m.err
}

// ── Mock AvailabilityService ──

type mockAvailabilityService struct {
	submitted []dto.SelectionItem
	icsBody   string
	err       error
}

func (m *mockAvailabilityService) ListMine(_ context.Context, _ string) ([]dto.AvailabilityResponse, error) {
	return []dto.AvailabilityResponse{}, m.err
}
func (m *mockAvailabilityService) Submit(_ context.Context, _ string, items []dto.SelectionItem) ([]dto.AvailabilityResponse, error) {
	m.submitted = items
	return []dto.AvailabilityResponse{}, m.err
}
func (m *mockAvailabilityService) Delete(_ context.Context, _ string, ids []string) (int, error) {
	return len(ids), m.err
}
func (m *mockAvailabilityService) ImportICS(_ context.Context, _ string, reader io.Reader) (*dto.ImportICSResponse, error) {
	b, _ := io.ReadAll(reader)
	m.icsBody = string(b)
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ImportICSResponse{Events: 1}, nil
}

// ── Mock SelectionService ──

type mockSelectionService struct {
	actor service.Actor
	err   error
}

func (m *mockSelectionService) Open(_ context.Context, actor service.Actor, req *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	m.actor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SessionResponse{ID: "s-1", Purpose: req.Purpose, Mode: "add"}, nil
}
func (m *mockSelectionService) Get(_ context.Context, _ service.Actor, id string) (*dto.SessionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SessionResponse{ID: id}, nil
}
func (m *mockSelectionService) Toggle(_ context.Context, _ service.Actor, _ string, _ *dto.ToggleRequest) (*dto.ToggleResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ToggleResponse{Changed: true}, nil
}
func (m *mockSelectionService) SwitchMode(_ context.Context, _ service.Actor, id string, mode string) (*dto.SessionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SessionResponse{ID: id, Mode: mode}, nil
}
func (m *mockSelectionService) Submit(_ context.Context, _ service.Actor, _ string) (*dto.SubmitSessionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SubmitSessionResponse{Mode: "add", Created: 1}, nil
}
func (m *mockSelectionService) Close(_ context.Context, _ service.Actor, _ string) error {
	return m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportTally(_ context.Context, _ *dto.TallyRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withAuth 模拟 JWTAuth 中间件注入的上下文
func withAuth(role string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "test-user-id")
		c.Set(middleware.CtxRole, role)
		c.Set(middleware.CtxClaims, &jwt.Claims{UserID: "test-user-id", Role: role, TokenType: jwt.TokenTypeAccess})
		next(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       io.Reader
		err        error
		wantStatus int
		wantCode   int
	}{
		{"成功", jsonBody(dto.LoginRequest{Email: "a@uni.edu", Password: "secret123"}), nil, 200, 0},
		{"非法 JSON", strings.NewReader("invalid json"), nil, 400, 10001},
		{"邮箱格式错误", jsonBody(dto.LoginRequest{Email: "nope", Password: "x"}), nil, 400, 10001},
		{"密码错误", jsonBody(dto.LoginRequest{Email: "a@uni.edu", Password: "wrong"}), service.ErrInvalidCredentials, 401, 11001},
		{"讲师未确认", jsonBody(dto.LoginRequest{Email: "a@uni.edu", Password: "secret123"}), service.ErrLecturerNotConfirmed, 403, 11003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				loginResult: &dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900},
				loginErr:    tt.err,
			})
			r := gin.New()
			r.POST("/auth/login", h.Login)

			w := serve(r, "POST", "/auth/login", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	r := gin.New()
	r.POST("/auth/register", h.Register)

	w := serve(r, "POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name: "Anna", Email: "anna@uni.edu", Password: "longenough", Role: "lecturer",
	}))
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}

	// 不允许自助注册管理员
	w = serve(r, "POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name: "Anna", Email: "anna@uni.edu", Password: "longenough", Role: "admin",
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("admin 注册期望 400，实际 %d", w.Code)
	}

	h = NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken})
	r = gin.New()
	r.POST("/auth/register", h.Register)
	w = serve(r, "POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name: "Anna", Email: "anna@uni.edu", Password: "longenough", Role: "student",
	}))
	if w.Code != http.StatusConflict || parseResponse(w).Code != 11002 {
		t.Errorf("重复邮箱期望 409/11002，实际 %d/%d", w.Code, parseResponse(w).Code)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidRefreshToken})
	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)

	if w := serve(r, "POST", "/auth/refresh", jsonBody(map[string]string{})); w.Code != http.StatusBadRequest {
		t.Errorf("缺少 refresh_token 期望 400，实际 %d", w.Code)
	}
	w := serve(r, "POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "stale"}))
	if w.Code != http.StatusUnauthorized || parseResponse(w).Code != 11004 {
		t.Errorf("失效 Token 期望 401/11004，实际 %d/%d", w.Code, parseResponse(w).Code)
	}
}

func TestAuthHandler_LogoutPassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)
	r := gin.New()
	r.POST("/auth/logout", withAuth("student", h.Logout))
	r.POST("/anon/logout", h.Logout)

	if w := serve(r, "POST", "/auth/logout", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.loggedOut == nil || mock.loggedOut.UserID != "test-user-id" {
		t.Errorf("Logout 未收到声明: %+v", mock.loggedOut)
	}
	if w := serve(r, "POST", "/anon/logout", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("未认证期望 401，实际 %d", w.Code)
	}
}

func TestAuthHandler_ConfirmLecturer(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{confirmErr: service.ErrNotLecturer})
	r := gin.New()
	r.POST("/users/:id/confirm", h.ConfirmLecturer)

	w := serve(r, "POST", "/users/u-1/confirm", nil)
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 11005 {
		t.Errorf("非讲师期望 400/11005，实际 %d/%d", w.Code, parseResponse(w).Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CourseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCourseHandler_ListMyCourses_ByRole(t *testing.T) {
	for role, want := range map[string]string{
		"student":  "student",
		"lecturer": "lecturer",
		"planner":  "all",
	} {
		mock := &mockCourseService{}
		h := NewCourseHandler(mock)
		r := gin.New()
		r.GET("/courses/mine", withAuth(role, h.ListMyCourses))

		if w := serve(r, "GET", "/courses/mine", nil); w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", role, w.Code)
		}
		if mock.called != want {
			t.Errorf("%s: 期望调用 %s，实际 %s", role, want, mock.called)
		}
	}
}

func TestCourseHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrCourseNotFound, 404, 13001},
		{"LecturerNotFound", service.ErrLecturerNotFound, 400, 13002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCourseHandler(&mockCourseService{err: tt.err})
			r := gin.New()
			r.PUT("/courses/:id/lecturer", h.AssignLecturer)

			w := serve(r, "PUT", "/courses/"+testCourseID+"/lecturer",
				jsonBody(dto.AssignLecturerRequest{LecturerID: testRecordID}))
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCourseHandler_Create_Validation(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{})
	r := gin.New()
	r.POST("/courses", h.CreateCourse)

	if w := serve(r, "POST", "/courses", jsonBody(dto.CreateCourseRequest{Name: "Algebra"})); w.Code != http.StatusBadRequest {
		t.Errorf("缺少 duration 期望 400，实际 %d", w.Code)
	}
	if w := serve(r, "POST", "/courses", jsonBody(dto.CreateCourseRequest{Name: "Algebra", Duration: 2})); w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AvailabilityHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAvailabilityHandler_Submit(t *testing.T) {
	mock := &mockAvailabilityService{}
	h := NewAvailabilityHandler(mock)
	r := gin.New()
	r.POST("/availability", withAuth("lecturer", h.Submit))

	body := jsonBody(dto.SubmitAvailabilityRequest{Items: []dto.SelectionItem{
		{DayName: "Monday", Times: []string{"09:00", "10:00"}},
	}})
	if w := serve(r, "POST", "/availability", body); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(mock.submitted) != 1 || mock.submitted[0].DayName != "Monday" {
		t.Errorf("载荷未透传: %+v", mock.submitted)
	}

	if w := serve(r, "POST", "/availability", jsonBody(map[string]interface{}{"items": []interface{}{}})); w.Code != http.StatusBadRequest {
		t.Errorf("空载荷期望 400，实际 %d", w.Code)
	}
}

func TestAvailabilityHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"InvalidItem", dto.ErrInvalidSelectionItem, 400, 15001},
		{"NotFound", service.ErrSelectionNotFound, 404, 15002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAvailabilityHandler(&mockAvailabilityService{err: tt.err})
			r := gin.New()
			r.DELETE("/availability", withAuth("lecturer", h.Delete))

			w := serve(r, "DELETE", "/availability", jsonBody(dto.DeleteSelectionsRequest{IDs: []string{testRecordID}}))
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAvailabilityHandler_ImportICS(t *testing.T) {
	upload := func(filename, content string) *http.Request {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("file", filename)
		fw.Write([]byte(content))
		mw.Close()
		req := httptest.NewRequest("POST", "/availability/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	mock := &mockAvailabilityService{}
	h := NewAvailabilityHandler(mock)
	r := gin.New()
	r.POST("/availability/import", withAuth("lecturer", h.ImportICS))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, upload("plan.ics", "BEGIN:VCALENDAR"))
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.icsBody != "BEGIN:VCALENDAR" {
		t.Errorf("文件内容未透传: %q", mock.icsBody)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, upload("plan.txt", "x"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("非 .ics 文件期望 400，实际 %d", w.Code)
	}

	mock.err = service.ErrICSNoEvents
	w = httptest.NewRecorder()
	r.ServeHTTP(w, upload("empty.ics", "BEGIN:VCALENDAR"))
	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 15005 {
		t.Errorf("空日历期望 400/15005，实际 %d/%d", w.Code, parseResponse(w).Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SelectionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSelectionHandler_OpenPassesActor(t *testing.T) {
	mock := &mockSelectionService{}
	h := NewSelectionHandler(mock)
	r := gin.New()
	r.POST("/sessions", withAuth("lecturer", h.Open))

	w := serve(r, "POST", "/sessions", jsonBody(dto.OpenSessionRequest{Purpose: dto.PurposeAvailability}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.actor.UserID != "test-user-id" || mock.actor.Role != "lecturer" {
		t.Errorf("Actor 不正确: %+v", mock.actor)
	}

	if w := serve(r, "POST", "/sessions", jsonBody(dto.OpenSessionRequest{Purpose: "other"})); w.Code != http.StatusBadRequest {
		t.Errorf("未知用途期望 400，实际 %d", w.Code)
	}
}

func TestSelectionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"SessionNotFound", pkgerrors.ErrSessionNotFound, 404, 16001},
		{"PermissionDenied", pkgerrors.ErrPermissionDenied, 403, 10003},
		{"SessionConflict", pkgerrors.ErrSessionConflict, 409, 16007},
		{"EmptySelection", service.ErrEmptySelection, 400, 16003},
		{"NothingToDelete", service.ErrNothingToDelete, 400, 16004},
		{"NotEligible", service.ErrSelectionNotEligible, 400, 15003},
		{"CourseScheduled", service.ErrCourseScheduled, 409, 13005},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSelectionHandler(&mockSelectionService{err: tt.err})
			r := gin.New()
			r.POST("/sessions/:id/submit", withAuth("student", h.Submit))

			w := serve(r, "POST", "/sessions/s-1/submit", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestSelectionHandler_SwitchMode(t *testing.T) {
	h := NewSelectionHandler(&mockSelectionService{})
	r := gin.New()
	r.PUT("/sessions/:id/mode", withAuth("student", h.SwitchMode))

	if w := serve(r, "PUT", "/sessions/s-1/mode", jsonBody(dto.SwitchModeRequest{Mode: "delete"})); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := serve(r, "PUT", "/sessions/s-1/mode", jsonBody(dto.SwitchModeRequest{Mode: "erase"})); w.Code != http.StatusBadRequest {
		t.Errorf("非法模式期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler / CatalogHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "偏好统计.xlsx",
	})
	r := gin.New()
	r.GET("/export/votes", h.ExportTally)

	w := serve(r, "GET", "/export/votes?course_id="+testCourseID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

func TestExportHandler_Errors(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrGroupNotFound})
	r := gin.New()
	r.GET("/export/votes", h.ExportTally)

	if w := serve(r, "GET", "/export/votes?group_id=not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Errorf("非法 group_id 期望 400，实际 %d", w.Code)
	}
	if w := serve(r, "GET", "/export/votes?group_id="+testRecordID, nil); w.Code != http.StatusNotFound {
		t.Errorf("小组不存在期望 404，实际 %d", w.Code)
	}
}

func TestCatalogHandler_Get(t *testing.T) {
	h := NewCatalogHandler(timegrid.DefaultCatalog())
	r := gin.New()
	r.GET("/catalog", h.Get)

	w := serve(r, "GET", "/catalog", nil)
	var resp struct {
		Data dto.CatalogResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Data.Days) == 0 || len(resp.Data.Hours) == 0 {
		t.Errorf("目录为空: %+v", resp.Data)
	}
}
