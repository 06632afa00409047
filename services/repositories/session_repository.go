package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colortap-studio/colortap_api/model"
)

// SessionRepository is the append-only log of completed game rounds.
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Insert appends one session record. The timestamp is assigned here, not
// taken from the client.
func (ds *SessionRepository) Insert(session *model.GameSession) error {
	id, _ := uuid.NewV7()
	session.ID = id.String()
	session.Timestamp = time.Now()
	return ds.db.Create(session).Error
}

func (ds *SessionRepository) RecentByUser(userID string, limit int) ([]model.GameSession, error) {
	var sessions []model.GameSession
	err := ds.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
