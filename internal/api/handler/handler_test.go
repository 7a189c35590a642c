package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/jwt"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.UserResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	currentResult  *dto.UserResponse
	currentErr     error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.UserResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.currentResult, m.currentErr
}

// ── Mock LoanService ──

type mockLoanService struct {
	requestResult *dto.LoanResponse
	requestErr    error
	approveResult *dto.LoanResponse
	approveErr    error
	rejectResult  *dto.LoanResponse
	rejectErr     error
	cancelResult  *dto.LoanResponse
	cancelErr     error
	pickupResult  *dto.LoanResponse
	pickupErr     error
	returnResult  *dto.LoanResponse
	returnErr     error
	deleteErr     error
	getResult     *dto.LoanResponse
	getErr        error
	listResult    []dto.LoanWithBookResponse
	listTotal     int64
	listErr       error
	previewResult *dto.DueDatePreviewResponse
	previewErr    error
	sweepCount    int
	sweepErr      error
	policiesList  []dto.PolicyResponse
	policyResult  *dto.PolicyResponse
	policyErr     error
}

func (m *mockLoanService) RequestLoan(_ context.Context, _ string, _ *dto.CreateLoanRequest) (*dto.LoanResponse, error) {
	return m.requestResult, m.requestErr
}
func (m *mockLoanService) ApproveLoan(_ context.Context, _ string) (*dto.LoanResponse, error) {
	return m.approveResult, m.approveErr
}
func (m *mockLoanService) RejectLoan(_ context.Context, _ string, _ *dto.RejectLoanRequest) (*dto.LoanResponse, error) {
	return m.rejectResult, m.rejectErr
}
func (m *mockLoanService) CancelLoan(_ context.Context, _, _ string) (*dto.LoanResponse, error) {
	return m.cancelResult, m.cancelErr
}
func (m *mockLoanService) ConfirmPickup(_ context.Context, _ string) (*dto.LoanResponse, error) {
	return m.pickupResult, m.pickupErr
}
func (m *mockLoanService) ReturnLoan(_ context.Context, _ string, _ *dto.ReturnLoanRequest) (*dto.LoanResponse, error) {
	return m.returnResult, m.returnErr
}
func (m *mockLoanService) DeleteLoan(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockLoanService) GetLoan(_ context.Context, _ string) (*dto.LoanResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockLoanService) ListLoans(_ context.Context, _ *dto.PaginationRequest) ([]dto.LoanWithBookResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockLoanService) ListLoansByStatus(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.LoanWithBookResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockLoanService) ListUserLoans(_ context.Context, _, _ string) ([]dto.LoanWithBookResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockLoanService) ListOverdueLoans(_ context.Context) ([]dto.LoanWithBookResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockLoanService) SearchLoans(_ context.Context, _ *dto.SearchLoansRequest) ([]dto.LoanWithBookResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockLoanService) PreviewDueDate(_ context.Context, _, _ string) (*dto.DueDatePreviewResponse, error) {
	return m.previewResult, m.previewErr
}
func (m *mockLoanService) RunOverdueSweep(_ context.Context) (int, error) {
	return m.sweepCount, m.sweepErr
}
func (m *mockLoanService) ListPolicies(_ context.Context) ([]dto.PolicyResponse, error) {
	return m.policiesList, m.policyErr
}
func (m *mockLoanService) GetPolicy(_ context.Context, _ string) (*dto.PolicyResponse, error) {
	return m.policyResult, m.policyErr
}
func (m *mockLoanService) UpdatePolicy(_ context.Context, _ string, _ *dto.UpdatePolicyRequest) (*dto.PolicyResponse, error) {
	return m.policyResult, m.policyErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const testUserID = "11111111-1111-1111-1111-111111111111"
const testCopyID = "22222222-2222-2222-2222-222222222222"

// withAuth 模拟 JWTAuth 中间件写入的上下文键
func withAuth(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", testUserID)
		c.Set("role", role)
		c.Next()
	}
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
		Email:    "student@eui.edu.eg",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("期望业务码 0, 实际 %d", resp.Code)
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
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "student@eui.edu.eg",
		Password: "wrong-password",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10103 {
		t.Errorf("期望业务码 10103, 实际 %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		UniversityID: "23-101234",
		FullName:     "Ahmed Hassan",
		Email:        "ahmed@eui.edu.eg",
		Password:     "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10101 {
		t.Errorf("期望业务码 10101, 实际 %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// LoanHandler Tests
// ═══════════════════════════════════════════════════════════

func loanRouter(mock *mockLoanService) *gin.Engine {
	h := NewLoanHandler(mock)
	r := gin.New()
	r.Use(withAuth("student"))
	r.POST("/loans/request", h.Request)
	r.POST("/loans/:id/approve", h.Approve)
	r.POST("/loans/:id/reject", h.Reject)
	r.POST("/loans/:id/cancel", h.Cancel)
	r.POST("/loans/:id/checkout", h.Checkout)
	r.POST("/loans/:id/return", h.Return)
	r.DELETE("/loans/:id", h.Delete)
	r.GET("/loans/:id", h.Get)
	r.GET("/loans/due-date-preview", h.PreviewDueDate)
	return r
}

func TestLoanHandler_Request_Created(t *testing.T) {
	mock := &mockLoanService{
		requestResult: &dto.LoanResponse{ID: "loan-1", CopyID: testCopyID, UserID: testUserID, Status: "pending"},
	}
	r := loanRouter(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/request", jsonBody(dto.CreateLoanRequest{CopyID: testCopyID}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("期望业务码 0, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Request_NoAuthContext(t *testing.T) {
	h := NewLoanHandler(&mockLoanService{})
	r := gin.New()
	r.POST("/loans/request", h.Request)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/request", jsonBody(dto.CreateLoanRequest{CopyID: testCopyID}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401, 实际 %d", w.Code)
	}
}

func TestLoanHandler_Request_Blacklisted(t *testing.T) {
	r := loanRouter(&mockLoanService{requestErr: service.ErrUserBlacklisted})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/request", jsonBody(dto.CreateLoanRequest{CopyID: testCopyID}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13103 {
		t.Errorf("期望业务码 13103, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Request_PolicyLimit(t *testing.T) {
	r := loanRouter(&mockLoanService{requestErr: service.ErrPolicyLimitReached})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/request", jsonBody(dto.CreateLoanRequest{CopyID: testCopyID}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13107 {
		t.Errorf("期望业务码 13107, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Request_ReferenceCopy(t *testing.T) {
	r := loanRouter(&mockLoanService{requestErr: service.ErrCopyReferenceOnly})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/request", jsonBody(dto.CreateLoanRequest{CopyID: testCopyID}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13105 {
		t.Errorf("期望业务码 13105, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Request_BadCopyID(t *testing.T) {
	r := loanRouter(&mockLoanService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/request", jsonBody(dto.CreateLoanRequest{CopyID: "not-a-uuid"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("期望业务码 13001, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Approve_InvalidState(t *testing.T) {
	r := loanRouter(&mockLoanService{approveErr: service.ErrInvalidLoanState})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/approve", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13108 {
		t.Errorf("期望业务码 13108, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Approve_Conflict(t *testing.T) {
	r := loanRouter(&mockLoanService{approveErr: service.ErrLoanConflict})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/approve", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13109 {
		t.Errorf("期望业务码 13109, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Approve_PolicyMissing(t *testing.T) {
	r := loanRouter(&mockLoanService{approveErr: service.ErrPolicyNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/approve", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望 500, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13110 {
		t.Errorf("期望业务码 13110, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Get_NotFound(t *testing.T) {
	r := loanRouter(&mockLoanService{getErr: service.ErrLoanNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/loans/no-such-loan", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13101 {
		t.Errorf("期望业务码 13101, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Cancel_NotOwner(t *testing.T) {
	r := loanRouter(&mockLoanService{cancelErr: service.ErrNotLoanOwner})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/cancel", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13104 {
		t.Errorf("期望业务码 13104, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Reject_NoBody(t *testing.T) {
	mock := &mockLoanService{
		rejectResult: &dto.LoanResponse{ID: "loan-1", Status: "rejected"},
	}
	r := loanRouter(mock)

	// 驳回理由可省略
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/reject", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200, 实际 %d", w.Code)
	}
}

func TestLoanHandler_Delete_Success(t *testing.T) {
	r := loanRouter(&mockLoanService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/loans/loan-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("期望 204, 实际 %d", w.Code)
	}
}

func TestLoanHandler_Delete_NotTerminal(t *testing.T) {
	r := loanRouter(&mockLoanService{deleteErr: service.ErrLoanNotTerminal})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/loans/loan-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13112 {
		t.Errorf("期望业务码 13112, 实际 %d", resp.Code)
	}
}

func TestLoanHandler_Return_InvalidState(t *testing.T) {
	r := loanRouter(&mockLoanService{returnErr: service.ErrInvalidLoanState})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/return", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
}

func TestLoanHandler_Return_NoBody(t *testing.T) {
	mock := &mockLoanService{
		returnResult: &dto.LoanResponse{ID: "loan-1", Status: "returned"},
	}
	r := loanRouter(mock)

	// 归还请求体可省略（默认不记违规）
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/loans/loan-1/return", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200, 实际 %d", w.Code)
	}
}

func TestLoanHandler_PreviewDueDate_MissingCopyID(t *testing.T) {
	r := loanRouter(&mockLoanService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/loans/due-date-preview", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
}
