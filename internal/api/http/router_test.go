package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/taxonomy"
)

const testPassword = "secret1"

type testServer struct {
	app   *fiber.App
	store *memstore.Store

	hardware, hardwareIssue int64
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, rateLimit config.RateLimitConfig) *testServer {
	t.Helper()
	ctx := context.Background()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}}
	store := memstore.New()
	repos := store.Repos()

	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repos.Users.Create(ctx, &domain.User{StaffNo: "U1", Name: "Dana", PasswordHash: hash}))
	require.NoError(t, repos.Staff.Create(ctx, &domain.StaffMember{StaffNo: "S1", Name: "Alice", PasswordHash: hash, Role: domain.StaffRoleSubadmin, Active: true}))
	require.NoError(t, repos.Staff.Create(ctx, &domain.StaffMember{StaffNo: "A1", Name: "Root", PasswordHash: hash, Role: domain.StaffRoleAdmin, Active: true}))

	hardware, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "Hardware")
	require.NoError(t, err)
	hardwareIssue, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelRelated, &hardware.ID, "Hardware Issue")
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	taxonomyStore := taxonomy.NewStore(repos.Taxonomy, taxonomy.Config{})
	classification := service.NewClassificationService(service.ClassificationDependencies{
		Classifier: classifier.New(taxonomyStore, repos.Taxonomy, logger, classifier.Config{Threshold: 0.4}),
		Taxonomy:   taxonomyStore,
	})
	complaints := service.NewComplaintService(service.ComplaintDependencies{Store: store, Dispatcher: dispatcher})
	triage := service.NewTriageService(service.TriageDependencies{Store: store, Dispatcher: dispatcher, Metrics: metrics})
	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{Store: store, Triage: triage, Dispatcher: dispatcher, Metrics: metrics})
	reports := service.NewReportService(store)
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: repos.Users, StaffRepo: repos.Staff})
	staffService := service.NewStaffService(cfg, service.AccountDependencies{UserRepo: repos.Users, StaffRepo: repos.Staff})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("complaint-service", "test", metrics, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(classification, complaints),
		Subadmin:       handlers.NewSubadminHandler(lifecycle, triage, reports),
		Admin:          handlers.NewAdminHandler(lifecycle, reports, staffService),
		Taxonomy:       handlers.NewTaxonomyHandler(service.NewTaxonomyAdminService(service.TaxonomyAdminDependencies{Store: store}), classification),
		Profile:        handlers.NewProfileHandler(service.NewProfileService(service.ProfileDependencies{UserRepo: repos.Users, StaffRepo: repos.Staff})),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.Users, repos.Staff),
		RateLimiter:    RateLimiter(rateLimit, nil),
	})

	return &testServer{app: app, store: store, hardware: hardware.ID, hardwareIssue: hardwareIssue.ID}
}

func defaultRateLimit() config.RateLimitConfig {
	return config.RateLimitConfig{Max: 100, WindowMinutes: 15}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *testServer) login(t *testing.T, staffNo string) string {
	t.Helper()
	status, env := s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"staff_no": staffNo, "password": testPassword})
	require.Equal(t, fiber.StatusOK, status)
	var data struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Auth.Token)
	return data.Auth.Token
}

// workbook renders rows onto the first sheet of a fresh .xlsx file.
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, book.SetSheetRow(sheet, cell, &values))
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func (s *testServer) upload(t *testing.T, path, token string, file io.Reader) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "upload.xlsx")
	require.NoError(t, err)
	_, err = io.Copy(part, file)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &body)
	req.Header.Set(fiber.HeaderContentType, form.FormDataContentType())
	return s.send(t, req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())

	status, _ := s.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, env := s.do(t, fiber.MethodGet, "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())

	status, env := s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"staff_no": "U1", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, env = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"staff_no": "U1"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "required", env.Error.Details["fields"].(map[string]any)["password"])
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	userToken := s.login(t, "U1")
	subadminToken := s.login(t, "S1")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"no token", fiber.MethodGet, "/complaints", "", fiber.StatusUnauthorized},
		{"garbage token", fiber.MethodGet, "/complaints", "not-a-jwt", fiber.StatusUnauthorized},
		{"staff on user routes", fiber.MethodGet, "/complaints", subadminToken, fiber.StatusForbidden},
		{"user on subadmin routes", fiber.MethodGet, "/subadmin/dashboard", userToken, fiber.StatusForbidden},
		{"subadmin on admin routes", fiber.MethodGet, "/admin/dashboard", subadminToken, fiber.StatusForbidden},
		{"staff reads taxonomy", fiber.MethodGet, "/taxonomy/main-issues", subadminToken, fiber.StatusOK},
		{"user reads taxonomy", fiber.MethodGet, "/taxonomy/main-issues", userToken, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestSubmitValidatesPayload(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	token := s.login(t, "U1")

	status, env := s.do(t, fiber.MethodPost, "/complaints", token, map[string]any{
		"description": "printer jammed",
		"priority":    "Urgent",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "oneof=Low Medium High", env.Error.Details["fields"].(map[string]any)["priority"])
}

func TestComplaintLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	userToken := s.login(t, "U1")
	subadminToken := s.login(t, "S1")

	status, env := s.do(t, fiber.MethodPost, "/complaints", userToken, map[string]any{
		"description":      "keyboard keys stuck",
		"main_issue_id":    s.hardware,
		"related_issue_id": s.hardwareIssue,
		"priority":         "High",
	})
	require.Equal(t, fiber.StatusCreated, status)
	created := decode[struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}](t, env)
	assert.Equal(t, "Open", created.Status)
	complaintPath := fmt.Sprintf("/subadmin/complaints/%d", created.ID)

	status, env = s.do(t, fiber.MethodPost, complaintPath+"/take", subadminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	taken := decode[struct {
		Status     string `json:"status"`
		AssignedTo string `json:"assigned_to"`
	}](t, env)
	assert.Equal(t, "Open", taken.Status)
	assert.Equal(t, "Alice", taken.AssignedTo)

	status, env = s.do(t, fiber.MethodPost, complaintPath+"/take", subadminToken, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, env = s.do(t, fiber.MethodPost, complaintPath+"/resolve", subadminToken, map[string]any{
		"direct_solution": "Replaced the keyboard",
		"severity":        "Minor",
	})
	require.Equal(t, fiber.StatusOK, status)
	resolved := decode[struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}](t, env)
	assert.Equal(t, "Closed", resolved.Status)
	assert.Equal(t, "Complaint resolved successfully", resolved.Message)

	status, env = s.do(t, fiber.MethodPost, complaintPath+"/resolve", subadminToken, map[string]any{"direct_solution": "again"})
	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	status, env = s.do(t, fiber.MethodGet, "/complaints/track", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	tracked := decode[[]struct {
		ID             int64  `json:"id"`
		MainIssue      string `json:"main_issue"`
		AssignedTo     string `json:"assigned_to"`
		DirectSolution string `json:"direct_solution"`
	}](t, env)
	require.Len(t, tracked, 1)
	assert.Equal(t, "Hardware", tracked[0].MainIssue)
	assert.Equal(t, "Alice", tracked[0].AssignedTo)
	assert.Equal(t, "Replaced the keyboard", tracked[0].DirectSolution)

	feedbackPath := fmt.Sprintf("/complaints/%d/feedback", created.ID)
	status, env = s.do(t, fiber.MethodPost, feedbackPath, userToken, map[string]any{"label": "Very Poor", "comment": "took long"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Very Poor", decode[struct {
		Label string `json:"label"`
	}](t, env).Label)

	status, _ = s.do(t, fiber.MethodPost, feedbackPath, userToken, map[string]any{"label": "Good"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, env = s.do(t, fiber.MethodGet, "/subadmin/dashboard", subadminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(1), decode[struct {
		TotalSolved int64 `json:"total_solved"`
	}](t, env).TotalSolved)
}

func TestUncategorizedTriageOverHTTP(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	userToken := s.login(t, "U1")
	subadminToken := s.login(t, "S1")

	status, env := s.do(t, fiber.MethodPost, "/complaints", userToken, map[string]any{"description": "something odd"})
	require.Equal(t, fiber.StatusCreated, status)
	created := decode[struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}](t, env)
	assert.Equal(t, "Pending", created.Status)

	status, env = s.do(t, fiber.MethodGet, "/subadmin/complaints/pending", subadminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	path := fmt.Sprintf("/subadmin/complaints/%d", created.ID)
	status, _ = s.do(t, fiber.MethodPost, path+"/resolve-uncategorized", subadminToken, map[string]any{"main_issue": map[string]any{"name": "Facilities"}})
	assert.Equal(t, fiber.StatusConflict, status, "pending complaints must be taken first")

	status, _ = s.do(t, fiber.MethodPost, path+"/take", subadminToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.do(t, fiber.MethodPost, path+"/resolve-uncategorized", subadminToken, map[string]any{
		"main_issue":        map[string]any{"name": "Facilities"},
		"related_issue":     map[string]any{"name": "Lighting"},
		"sub_related_issue": map[string]any{"name": "Flickering Lamp"},
		"solution_steps":    []string{"Replace the tube"},
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Closed", decode[struct {
		Status string `json:"status"`
	}](t, env).Status)

	status, env = s.do(t, fiber.MethodGet, "/taxonomy/main-issues", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	mains := decode[[]struct {
		Name string `json:"name"`
	}](t, env)
	names := make([]string, 0, len(mains))
	for _, n := range mains {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "Facilities")
}

func TestRateLimitOnUserRoutes(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{Max: 2, WindowMinutes: 1})
	token := s.login(t, "U1")

	for i := 0; i < 2; i++ {
		status, _ := s.do(t, fiber.MethodGet, "/complaints/summary", token, nil)
		require.Equal(t, fiber.StatusOK, status)
	}
	status, env := s.do(t, fiber.MethodGet, "/complaints/summary", token, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeRateLimited, env.Error.Code)
}

func TestAdminAccountsAndTaxonomy(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	adminToken := s.login(t, "A1")

	status, env := s.do(t, fiber.MethodPost, "/admin/users", adminToken, map[string]any{"staff_no": "EMP-7", "name": "Eve"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "EMP7", decode[struct {
		StaffNo string `json:"staff_no"`
	}](t, env).StaffNo)

	status, _ = s.do(t, fiber.MethodPost, "/admin/staff", adminToken, map[string]any{
		"staff_no": "S9", "name": "Sam", "password": "secret9", "role": "OWNER",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodPost, "/admin/taxonomy/bogus-level", adminToken, map[string]any{"name": "X"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = s.do(t, fiber.MethodDelete, "/admin/taxonomy/main-issues/1", adminToken, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	status, env = s.do(t, fiber.MethodPost, "/admin/taxonomy/related-issues", adminToken, map[string]any{"name": "Monitor", "parent_id": s.hardware})
	require.Equal(t, fiber.StatusCreated, status)
	monitor := decode[struct {
		ID int64 `json:"id"`
	}](t, env)

	status, _ = s.do(t, fiber.MethodPut, fmt.Sprintf("/admin/taxonomy/related-issues/%d", monitor.ID), adminToken, map[string]any{"name": "Display"})
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestAdminImportsHierarchy(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	adminToken := s.login(t, "A1")

	status, env := s.upload(t, "/admin/taxonomy/import", adminToken, workbook(t, [][]any{
		{"mainIssue", "relatedIssue", "subRelatedIssue", "description", "step_number", "step_instruction"},
		{"Network", "WiFi", "No Signal", "Laptop cannot see the network", 1, "Toggle airplane mode"},
		{"", "", "", "", 2, "Restart the adapter"},
	}))
	require.Equal(t, fiber.StatusOK, status)
	report := decode[struct {
		InsertedMain      int `json:"inserted_main"`
		InsertedSolutions int `json:"inserted_solutions"`
	}](t, env)
	assert.Equal(t, 1, report.InsertedMain)
	assert.Equal(t, 2, report.InsertedSolutions)

	status, _ = s.do(t, fiber.MethodPost, "/admin/taxonomy/import", adminToken, map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestProfileOverHTTP(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	userToken := s.login(t, "U1")
	subadminToken := s.login(t, "S1")

	type profile struct {
		SubjectType string `json:"subject_type"`
		StaffNo     string `json:"staff_no"`
		Name        string `json:"name"`
		Department  string `json:"department"`
		Role        string `json:"role"`
	}

	status, env := s.do(t, fiber.MethodGet, "/profile", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	got := decode[profile](t, env)
	assert.Equal(t, "USER", got.SubjectType)
	assert.Equal(t, "Dana", got.Name)
	assert.Empty(t, got.Role)

	status, env = s.do(t, fiber.MethodPut, "/profile", userToken, map[string]any{"name": "Dana K", "department": "Finance"})
	require.Equal(t, fiber.StatusOK, status)
	got = decode[profile](t, env)
	assert.Equal(t, "Dana K", got.Name)
	assert.Equal(t, "Finance", got.Department)

	status, env = s.do(t, fiber.MethodPut, "/profile", userToken, map[string]any{"department": "Finance"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = s.do(t, fiber.MethodGet, "/profile", subadminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	got = decode[profile](t, env)
	assert.Equal(t, "STAFF", got.SubjectType)
	assert.Equal(t, "SUBADMIN", got.Role)

	status, _ = s.do(t, fiber.MethodGet, "/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminImportsAccounts(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	adminToken := s.login(t, "A1")

	status, env := s.upload(t, "/admin/users/import", adminToken, workbook(t, [][]any{
		{"Staff No", "Name", "Department", "Role", "Password"},
		{"1001", "Nia", "Finance", "user", ""},
		{"S1", "", "", "subadmin", "rotated1"},
		{"EMP-X", "Bad", "", "user", ""},
		{"S77", "Nopass", "", "admin", ""},
	}))
	require.Equal(t, fiber.StatusOK, status)
	report := decode[struct {
		Created int `json:"created"`
		Updated int `json:"updated"`
		Failed  []struct {
			Row     int    `json:"row"`
			StaffNo string `json:"staff_no"`
		} `json:"failed"`
	}](t, env)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, 4, report.Failed[0].Row)
	assert.Equal(t, "EMPX", report.Failed[0].StaffNo)
	assert.Equal(t, 5, report.Failed[1].Row)

	// The imported user logs in with the staff number as password.
	status, _ = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"staff_no": "1001", "password": "1001"})
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"staff_no": "S1", "password": "rotated1"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = s.upload(t, "/admin/users/import", adminToken, workbook(t, [][]any{{"name"}, {"x"}}))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdminAnalyticsOverHTTP(t *testing.T) {
	s := newTestServer(t, defaultRateLimit())
	userToken := s.login(t, "U1")
	adminToken := s.login(t, "A1")

	for _, priority := range []string{"High", "Low"} {
		status, _ := s.do(t, fiber.MethodPost, "/complaints", userToken, map[string]any{
			"description":      "keyboard keys stuck",
			"main_issue_id":    s.hardware,
			"related_issue_id": s.hardwareIssue,
			"priority":         priority,
		})
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, env := s.do(t, fiber.MethodGet, "/admin/reports/repeated-complaints", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	repeated := decode[[]struct {
		StaffNo      string `json:"staff_no"`
		RelatedIssue string `json:"related_issue"`
		Count        int64  `json:"count"`
	}](t, env)
	require.Len(t, repeated, 1)
	assert.Equal(t, "U1", repeated[0].StaffNo)
	assert.Equal(t, "Hardware Issue", repeated[0].RelatedIssue)
	assert.Equal(t, int64(2), repeated[0].Count)

	status, env = s.do(t, fiber.MethodGet, "/admin/complaints/high-priority", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	status, env = s.do(t, fiber.MethodGet, "/admin/users/summary", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	summary := decode[[]struct {
		StaffNo string `json:"staff_no"`
		Total   int64  `json:"total"`
		Pending int64  `json:"pending"`
	}](t, env)
	require.Len(t, summary, 1)
	assert.Equal(t, int64(2), summary[0].Total)
	assert.Equal(t, int64(2), summary[0].Pending)

	status, env = s.do(t, fiber.MethodGet, "/admin/users/1/timeline", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	timeline := decode[[]struct {
		Day   string `json:"day"`
		Count int64  `json:"count"`
	}](t, env)
	require.Len(t, timeline, 1)
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), timeline[0].Day)
	assert.Equal(t, int64(2), timeline[0].Count)

	status, _ = s.do(t, fiber.MethodGet, "/admin/users/99/timeline", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = s.do(t, fiber.MethodGet, "/admin/reports/top-complainers", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]json.RawMessage](t, env))
}
