package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colortap-studio/colortap_api/model"
)

// UserRepository handles device-backed user identities.
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *UserRepository) GetByDeviceID(deviceID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("device_id = ?", deviceID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetByIDs(userIDs []string) ([]model.User, error) {
	var users []model.User
	if err := ds.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ds *UserRepository) Create(user *model.User) error {
	id, _ := uuid.NewV7()
	user.ID = id.String()
	user.LastSeen = time.Now()
	return ds.db.Create(user).Error
}

func (ds *UserRepository) UpdateLastSeen(userID string) error {
	now := time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_seen":  now,
		"updated_at": now,
	}).Error
}

func (ds *UserRepository) UpdateAvatarURL(userID, avatarURL string) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"avatar_url": avatarURL,
		"updated_at": time.Now(),
	}).Error
}
