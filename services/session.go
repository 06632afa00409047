package services

import (
	"fmt"

	"github.com/alphabatem/common/context"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/model"
	"github.com/colortap-studio/colortap_api/services/repositories"
	"github.com/colortap-studio/colortap_api/shared"
)

// SessionStore is the persistence surface for the session log.
type SessionStore interface {
	Insert(session *model.GameSession) error
	RecentByUser(userID string, limit int) ([]model.GameSession, error)
}

// SessionService is the append-only recorder for completed rounds. It never
// mutates or deletes, and it performs no retries; a failed append surfaces to
// the caller and has no effect on the stats aggregate.
type SessionService struct {
	context.DefaultService

	sqlSvc SqlService

	store SessionStore
}

const SESSION_SVC = "session_svc"

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SessionService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(SqlService)
	svc.store = repositories.NewSessionRepository(svc.sqlSvc.Db())
	return nil
}

// AddGameSession appends one immutable session record with a server-assigned
// timestamp.
func (svc *SessionService) AddGameSession(userID string, req dto.AddGameSessionRequest) (*dto.GameSessionResponse, error) {
	if userID == "" {
		return nil, shared.NewBadRequestError(fmt.Errorf("empty user id"), "User ID is required")
	}
	if err := req.Validate(); err != nil {
		appErr := shared.NewBadRequestError(err, "Validation failed")
		appErr.Data = dto.FormatValidationErrors(err)
		return nil, appErr
	}

	gameMode := req.GameMode
	if gameMode == "" {
		gameMode = shared.GameModeColorTap
	}

	session := &model.GameSession{
		UserID:         userID,
		SessionID:      req.SessionID,
		Score:          req.Score,
		CorrectAnswers: req.CorrectAnswers,
		TotalQuestions: req.TotalQuestions,
		ResponseTime:   req.ResponseTime,
		GameMode:       gameMode,
	}

	if err := svc.store.Insert(session); err != nil {
		return nil, translateSqlError(err)
	}

	sessionsRecordedTotal.Inc()
	return sessionToResponse(session), nil
}

// GetRecentSessions returns up to limit sessions for userID, most recent
// first. limit defaults to 5.
func (svc *SessionService) GetRecentSessions(userID string, limit int) (*dto.SessionListResponse, error) {
	if userID == "" {
		return nil, shared.NewBadRequestError(fmt.Errorf("empty user id"), "User ID is required")
	}
	if limit <= 0 {
		limit = shared.DefaultRecentSessions
	}
	if limit > shared.MaxRecentSessions {
		limit = shared.MaxRecentSessions
	}

	sessions, err := svc.store.RecentByUser(userID, limit)
	if err != nil {
		return nil, translateSqlError(err)
	}

	resp := &dto.SessionListResponse{
		Sessions: make([]dto.GameSessionResponse, len(sessions)),
	}
	for i := range sessions {
		resp.Sessions[i] = *sessionToResponse(&sessions[i])
	}
	return resp, nil
}

func sessionToResponse(session *model.GameSession) *dto.GameSessionResponse {
	return &dto.GameSessionResponse{
		SessionID:      session.SessionID,
		UserID:         session.UserID,
		Score:          session.Score,
		CorrectAnswers: session.CorrectAnswers,
		TotalQuestions: session.TotalQuestions,
		ResponseTime:   session.ResponseTime,
		GameMode:       session.GameMode,
		Timestamp:      session.Timestamp,
	}
}
