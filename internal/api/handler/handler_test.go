package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"dwreport/backend/internal/dto"
	"dwreport/backend/internal/service"
	"dwreport/backend/pkg/jwt"
	"dwreport/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
	changePassErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock UserService ──

type mockUserService struct {
	listResult   []dto.UserResponse
	listErr      error
	getResult    *dto.UserResponse
	getErr       error
	createResult *dto.CreateUserResponse
	createErr    error
	updateResult *dto.UserResponse
	updateErr    error
	setPassErr   error
}

func (m *mockUserService) List(_ context.Context) ([]dto.UserResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockUserService) GetByID(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockUserService) CreateUser(_ context.Context, _ *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockUserService) Update(_ context.Context, _ string, _ *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockUserService) SetPassword(_ context.Context, _ *dto.SetPasswordRequest) error {
	return m.setPassErr
}

// ── Mock ReportService ──

type mockReportService struct {
	submitResult   *dto.SubmitReportResponse
	submitErr      error
	listMineResult []dto.ReportRowResponse
	listMineErr    error
	adminResult    *dto.AdminReportResponse
	adminErr       error
	prefillResult  *dto.PrefillResponse
	prefillErr     error
}

func (m *mockReportService) Submit(_ context.Context, _ *dto.SubmitReportRequest, _ string) (*dto.SubmitReportResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockReportService) ListMine(_ context.Context, _ string, _ *dto.DateRangeQuery) ([]dto.ReportRowResponse, error) {
	return m.listMineResult, m.listMineErr
}
func (m *mockReportService) AdminQuery(_ context.Context, _ *dto.AdminReportQuery) (*dto.AdminReportResponse, error) {
	return m.adminResult, m.adminErr
}
func (m *mockReportService) PrefillFromICS(_ io.Reader, _ string) (*dto.PrefillResponse, error) {
	return m.prefillResult, m.prefillErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportReportsCSV(_ context.Context, _ *dto.ExportReportQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportDayExcel(_ context.Context, _ *dto.ExportDayQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// injectIdentity 模拟 JWT 中间件注入的身份信息
func injectIdentity(c *gin.Context) {
	c.Set("auth_user_id", "test-auth-user-id")
	c.Set("profile_id", "test-profile-id")
	c.Set("role", "staff")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_DisabledAccount(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrAccountDisabled})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	// 不挂身份注入中间件，模拟未认证请求
	r := gin.New()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		getCurrentResult: &dto.UserResponse{ID: "test-profile-id", Name: "Alice"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", injectIdentity, h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Submit_Success(t *testing.T) {
	h := NewReportHandler(&mockReportService{
		submitResult: &dto.SubmitReportResponse{Saved: 2},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports", jsonBody(dto.SubmitReportRequest{
		WorkDate: "2026-08-10",
		Items: []dto.ReportItem{
			{TaskDescription: "code review", StartClock: "09:00", EndClock: "10:00", Status: "Complete"},
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/reports", injectIdentity, h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestReportHandler_Submit_ValidationErrorCarriesDetails(t *testing.T) {
	h := NewReportHandler(&mockReportService{
		submitErr: &service.ValidationError{Items: []dto.ItemError{
			{Index: 0, Field: "task_description", Message: "任务描述不能为空"},
		}},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports", jsonBody(dto.SubmitReportRequest{
		WorkDate: "2026-08-10",
		Items:    []dto.ReportItem{{Status: "Complete"}},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/reports", injectIdentity, h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
	if resp.Details == nil {
		t.Error("expected per-item details in response")
	}
}

func TestReportHandler_Submit_FutureDate(t *testing.T) {
	h := NewReportHandler(&mockReportService{submitErr: service.ErrFutureDate})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports", jsonBody(dto.SubmitReportRequest{
		WorkDate: "2099-01-01",
		Items:    []dto.ReportItem{{TaskDescription: "x", Status: "Complete"}},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/reports", injectIdentity, h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13003 {
		t.Errorf("expected error code 13003, got %d", resp.Code)
	}
}

func TestReportHandler_ListMine_MissingRange(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/mine", nil)

	r := gin.New()
	r.GET("/reports/mine", injectIdentity, h.ListMine)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReportHandler_AdminQuery_Success(t *testing.T) {
	h := NewReportHandler(&mockReportService{
		adminResult: &dto.AdminReportResponse{
			Detailed: []dto.ReportRowResponse{{ReportID: "r1"}},
			Grouped:  []dto.GroupRowResponse{{GroupKey: "u1"}},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/reports?from=2026-08-10&to=2026-08-10", nil)

	r := gin.New()
	r.GET("/admin/reports", h.AdminQuery)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestReportHandler_AdminQuery_StoreErrorPassthrough(t *testing.T) {
	h := NewReportHandler(&mockReportService{adminErr: errors.New("pq: canceling statement due to statement timeout")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/reports?from=2026-08-10&to=2026-08-10", nil)

	r := gin.New()
	r.GET("/admin/reports", h.AdminQuery)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10006 || resp.Message != "pq: canceling statement due to statement timeout" {
		t.Errorf("unexpected store error mapping: code=%d message=%q", resp.Code, resp.Message)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_Create_Success(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		createResult: &dto.CreateUserResponse{OK: true, UserID: "au-1"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/users", jsonBody(dto.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/users", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestUserHandler_Create_EmailConflict(t *testing.T) {
	h := NewUserHandler(&mockUserService{createErr: service.ErrEmailExists})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/users", jsonBody(dto.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/users", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestUserHandler_Create_LinkConflict(t *testing.T) {
	h := NewUserHandler(&mockUserService{createErr: service.ErrProfileLinkConflict})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/users", jsonBody(dto.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/users", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12003 {
		t.Errorf("expected error code 12003, got %d", resp.Code)
	}
}

func TestUserHandler_List_StoreErrorPassthrough(t *testing.T) {
	h := NewUserHandler(&mockUserService{listErr: errors.New(`pq: relation "profiles" does not exist`)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/users", nil)

	r := gin.New()
	r.GET("/admin/users", h.List)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10006 {
		t.Errorf("expected error code 10006, got %d", resp.Code)
	}
	if resp.Message != `pq: relation "profiles" does not exist` {
		t.Errorf("store error message should pass through, got %q", resp.Message)
	}
}

func TestUserHandler_Create_StoreErrorPassthrough(t *testing.T) {
	h := NewUserHandler(&mockUserService{createErr: errors.New("pq: connection refused")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/users", jsonBody(dto.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/users", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10006 || resp.Message != "pq: connection refused" {
		t.Errorf("unexpected store error mapping: code=%d message=%q", resp.Code, resp.Message)
	}
}

func TestUserHandler_GetByID_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{getErr: service.ErrProfileNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/users/missing", nil)

	r := gin.New()
	r.GET("/admin/users/:id", h.GetByID)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12001 {
		t.Errorf("expected error code 12001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_CSV_DownloadHeaders(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("Report Date,Emp. ID\n"),
		filename: "Daily_Reports_10-08-2026_to_10-08-2026.csv",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/export/reports?from=2026-08-10&to=2026-08-10", nil)

	r := gin.New()
	r.GET("/admin/export/reports", h.ExportReportsCSV)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "text/csv; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd != "attachment; filename*=UTF-8''Daily_Reports_10-08-2026_to_10-08-2026.csv" {
		t.Errorf("unexpected content disposition: %s", cd)
	}
}

func TestExportHandler_CSV_StoreErrorPassthrough(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: errors.New(`pq: relation "reports_with_profiles" does not exist`)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/export/reports?from=2026-08-10&to=2026-08-10", nil)

	r := gin.New()
	r.GET("/admin/export/reports", h.ExportReportsCSV)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10006 {
		t.Errorf("expected error code 10006, got %d", resp.Code)
	}
	if resp.Message != `pq: relation "reports_with_profiles" does not exist` {
		t.Errorf("store error message should pass through, got %q", resp.Message)
	}
}

func TestExportHandler_CSV_BadView(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/export/reports?from=2026-08-10&to=2026-08-10&view=pivot", nil)

	r := gin.New()
	r.GET("/admin/export/reports", h.ExportReportsCSV)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_Day_MissingDate(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/export/day", nil)

	r := gin.New()
	r.GET("/admin/export/day", h.ExportDayExcel)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
