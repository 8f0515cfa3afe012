package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/socialchat/backend/internal/models"
)

var (
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenNotFound      = errors.New("refresh token not found")
)

// TokenPair is an access/refresh token pair returned to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthService handles registration, login and the token pair lifecycle.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{
		db:     db,
		tokens: tokens,
	}
}

// Register creates a user with a hashed password. No token is issued at
// registration; the client logs in afterwards.
func (s *AuthService) Register(username, password, email string) (*models.User, error) {
	var existing models.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and mints a fresh token pair. Any previous
// pair for the user is evicted in the same transaction, so logging in
// elsewhere invalidates the old session.
func (s *AuthService) Login(username, password string) (*TokenPair, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuthToken{
			UserID:  user.ID,
			Access:  access,
			Refresh: refresh,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair. The token must both
// verify against the signing secret and match a stored pair; the stored
// row is rewritten in place rather than replaced.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	var stored models.AuthToken
	if err := s.db.Where("refresh = ?", refreshToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	// Signature and expiry are checked independently of the store lookup.
	if _, err := s.tokens.DecodeToken(refreshToken); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(stored.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	stored.Access = access
	stored.Refresh = refresh
	if err := s.db.Save(&stored).Error; err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Authenticate resolves a raw access token to a user. The token must
// decode cleanly and match the live stored pair for that user, so tokens
// from superseded logins are rejected. On success the user's online
// timestamp is updated as a best-effort side effect.
func (s *AuthService) Authenticate(accessToken string) (*models.User, error) {
	claims, err := s.tokens.DecodeToken(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	var stored models.AuthToken
	if err := s.db.Where("user_id = ?", claims.UserID).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if stored.Access != accessToken {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	s.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_online", now)
	user.IsOnline = &now

	return &user, nil
}
