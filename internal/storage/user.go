package storage

import (
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/models"
)

func GetUserByUsername(db *gormw.DB, username string) (*models.User, error) {
	user := &models.User{}
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByEmail(db *gormw.DB, email string) (*models.User, error) {
	user := &models.User{}
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUserID looks up by the external snowflake identity, not the row ID.
func GetUserByUserID(db *gormw.DB, userID uint64) (*models.User, error) {
	user := &models.User{}
	if err := db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(db *gormw.DB, user *models.User) error {
	return db.Create(user).Error
}
