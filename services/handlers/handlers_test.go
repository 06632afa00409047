package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/model"
	"github.com/colortap-studio/colortap_api/shared"
)

type mockStatsService struct {
	lastUserID string
	lastLimit  int

	statsResp       *dto.UserStatsResponse
	leaderboardResp *dto.LeaderboardResponse
	err             error
}

func (m *mockStatsService) UpdateUserStats(userID string, req dto.UpdateUserStatsRequest) (*dto.UserStatsResponse, error) {
	m.lastUserID = userID
	return m.statsResp, m.err
}

func (m *mockStatsService) GetUserStats(userID string) (*dto.UserStatsResponse, error) {
	m.lastUserID = userID
	return m.statsResp, m.err
}

func (m *mockStatsService) GetLeaderboard(limit int) (*dto.LeaderboardResponse, error) {
	m.lastLimit = limit
	return m.leaderboardResp, m.err
}

type mockSessionService struct {
	lastUserID string
	lastLimit  int
	lastReq    dto.AddGameSessionRequest

	sessionResp *dto.GameSessionResponse
	listResp    *dto.SessionListResponse
	err         error
}

func (m *mockSessionService) AddGameSession(userID string, req dto.AddGameSessionRequest) (*dto.GameSessionResponse, error) {
	m.lastUserID = userID
	m.lastReq = req
	return m.sessionResp, m.err
}

func (m *mockSessionService) GetRecentSessions(userID string, limit int) (*dto.SessionListResponse, error) {
	m.lastUserID = userID
	m.lastLimit = limit
	return m.listResp, m.err
}

type mockAuthService struct {
	lastReq dto.DeviceAuthRequest

	authResp *dto.DeviceAuthResponse
	err      error
}

func (m *mockAuthService) DeviceAuth(req dto.DeviceAuthRequest) (*dto.DeviceAuthResponse, error) {
	m.lastReq = req
	return m.authResp, m.err
}

func (m *mockAuthService) GetUser(userID string) (*model.User, error) {
	return &model.User{ID: userID}, nil
}

func (m *mockAuthService) SetAvatarURL(userID, avatarURL string) error {
	return nil
}

func (m *mockAuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(shared.UserID, "u1")
		return c.Next()
	}
}

// newTestApp wires the handlers the way the HTTP service does, with a stub
// auth middleware that injects a fixed caller.
func newTestApp(statsSvc *mockStatsService, sessionSvc *mockSessionService, authSvc *mockAuthService) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:  shared.JSONEncoder,
		JSONDecoder:  shared.JSONDecoder,
		ErrorHandler: shared.ErrorHandler,
	})

	statsHandler := NewStatsHandler(statsSvc)
	leaderboardHandler := NewLeaderboardHandler(statsSvc)
	sessionHandler := NewSessionHandler(sessionSvc)
	authHandler := NewAuthHandler(authSvc)

	v1 := app.Group("/api/v1")
	v1.Post("/auth/device", authHandler.DeviceAuth)
	v1.Get("/leaderboard", leaderboardHandler.GetLeaderboard)

	protected := v1.Group("", func(c *fiber.Ctx) error {
		c.Locals(shared.UserID, "u1")
		return c.Next()
	})
	protected.Post("/stats", statsHandler.UpdateUserStats)
	protected.Get("/stats", statsHandler.GetUserStats)
	protected.Post("/sessions", sessionHandler.AddGameSession)
	protected.Get("/sessions", sessionHandler.GetRecentSessions)

	return app
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeEnvelope(t *testing.T, resp *http.Response) shared.Response {
	t.Helper()
	var envelope shared.Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestUpdateUserStats_ReturnsAggregate(t *testing.T) {
	statsSvc := &mockStatsService{statsResp: &dto.UserStatsResponse{UserID: "u1", TotalGames: 3, BestScore: 7}}
	app := newTestApp(statsSvc, &mockSessionService{}, &mockAuthService{})

	body := dto.UpdateUserStatsRequest{Username: "alice", Score: 7, CorrectAnswers: 4, TotalQuestions: 4, ResponseTime: 1.0}
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/stats", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if statsSvc.lastUserID != "u1" {
		t.Errorf("service userID = %q, want caller from token", statsSvc.lastUserID)
	}

	envelope := decodeEnvelope(t, resp)
	data, _ := json.Marshal(envelope.Data)
	var stats dto.UserStatsResponse
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if stats.TotalGames != 3 || stats.BestScore != 7 {
		t.Errorf("stats = %+v, want games 3, best 7", stats)
	}
}

func TestUpdateUserStats_MalformedBody(t *testing.T) {
	app := newTestApp(&mockStatsService{}, &mockSessionService{}, &mockAuthService{})

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/stats", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateUserStats_ServiceErrorPassesThrough(t *testing.T) {
	statsSvc := &mockStatsService{err: shared.NewBadRequestError(fmt.Errorf("bad counts"), "Validation failed")}
	app := newTestApp(statsSvc, &mockSessionService{}, &mockAuthService{})

	body := dto.UpdateUserStatsRequest{Username: "alice", Score: 7, CorrectAnswers: 5, TotalQuestions: 4}
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/stats", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Message != "Validation failed" {
		t.Errorf("message = %q, want %q", envelope.Message, "Validation failed")
	}
}

func TestGetUserStats_NotFound(t *testing.T) {
	statsSvc := &mockStatsService{err: shared.NewNotFoundError(fmt.Errorf("no row"), "No stats recorded yet")}
	app := newTestApp(statsSvc, &mockSessionService{}, &mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/stats", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetUserStats_QueryOverridesCaller(t *testing.T) {
	statsSvc := &mockStatsService{statsResp: &dto.UserStatsResponse{UserID: "u2"}}
	app := newTestApp(statsSvc, &mockSessionService{}, &mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/stats?userId=u2", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if statsSvc.lastUserID != "u2" {
		t.Errorf("service userID = %q, want %q", statsSvc.lastUserID, "u2")
	}
}

func TestGetLeaderboard_LimitParsing(t *testing.T) {
	cases := []struct {
		name       string
		target     string
		wantStatus int
		wantLimit  int
	}{
		{"default", "/api/v1/leaderboard", fiber.StatusOK, shared.DefaultLeaderboardLimit},
		{"explicit", "/api/v1/leaderboard?limit=25", fiber.StatusOK, 25},
		{"zero", "/api/v1/leaderboard?limit=0", fiber.StatusBadRequest, 0},
		{"negative", "/api/v1/leaderboard?limit=-5", fiber.StatusBadRequest, 0},
		{"garbage", "/api/v1/leaderboard?limit=abc", fiber.StatusBadRequest, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			statsSvc := &mockStatsService{leaderboardResp: &dto.LeaderboardResponse{}}
			app := newTestApp(statsSvc, &mockSessionService{}, &mockAuthService{})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.target, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == fiber.StatusOK && statsSvc.lastLimit != tc.wantLimit {
				t.Errorf("service limit = %d, want %d", statsSvc.lastLimit, tc.wantLimit)
			}
		})
	}
}

func TestAddGameSession_Created(t *testing.T) {
	sessionSvc := &mockSessionService{sessionResp: &dto.GameSessionResponse{SessionID: "s1", UserID: "u1"}}
	app := newTestApp(&mockStatsService{}, sessionSvc, &mockAuthService{})

	body := dto.AddGameSessionRequest{SessionID: "s1", Score: 5, CorrectAnswers: 3, TotalQuestions: 3}
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/sessions", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if sessionSvc.lastUserID != "u1" {
		t.Errorf("service userID = %q, want caller from token", sessionSvc.lastUserID)
	}
	if sessionSvc.lastReq.SessionID != "s1" {
		t.Errorf("service SessionID = %q, want %q", sessionSvc.lastReq.SessionID, "s1")
	}
}

func TestGetRecentSessions_LimitParsing(t *testing.T) {
	sessionSvc := &mockSessionService{listResp: &dto.SessionListResponse{}}
	app := newTestApp(&mockStatsService{}, sessionSvc, &mockAuthService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/sessions?limit=12", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if sessionSvc.lastLimit != 12 {
		t.Errorf("service limit = %d, want 12", sessionSvc.lastLimit)
	}

	// Unparseable limits fall back to the default rather than erroring.
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/sessions?limit=abc", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if sessionSvc.lastLimit != shared.DefaultRecentSessions {
		t.Errorf("service limit = %d, want %d", sessionSvc.lastLimit, shared.DefaultRecentSessions)
	}
}

func TestDeviceAuth_ValidatesBeforeService(t *testing.T) {
	authSvc := &mockAuthService{}
	app := newTestApp(&mockStatsService{}, &mockSessionService{}, authSvc)

	body := dto.DeviceAuthRequest{DeviceID: "short"}
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/device", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if authSvc.lastReq.DeviceID != "" {
		t.Error("service was called for an invalid request")
	}
}

func TestDeviceAuth_ReturnsToken(t *testing.T) {
	authSvc := &mockAuthService{authResp: &dto.DeviceAuthResponse{Token: "jwt-token", UserID: "u1", Username: "alice"}}
	app := newTestApp(&mockStatsService{}, &mockSessionService{}, authSvc)

	body := dto.DeviceAuthRequest{DeviceID: "device-1234", Username: "alice"}
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/device", body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if authSvc.lastReq.DeviceID != "device-1234" {
		t.Errorf("service DeviceID = %q, want %q", authSvc.lastReq.DeviceID, "device-1234")
	}
}
