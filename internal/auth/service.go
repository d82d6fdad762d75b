// Package auth orchestrates registration, login, refresh token rotation and
// logout on top of the credential hasher, the token issuer and the refresh
// store. It owns the write path to the refresh token table; nothing else
// mutates it.
package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/hasher"
	"github.com/charleshuang3/posterboard/internal/idgen"
	"github.com/charleshuang3/posterboard/internal/models"
	"github.com/charleshuang3/posterboard/internal/storage"
	"github.com/charleshuang3/posterboard/internal/tokens"
)

var (
	logger = log.With().Str("component", "auth").Logger()

	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9-_]{3,50}$`)
)

const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

type Service struct {
	db         *gormw.DB
	hasher     hasher.PasswordHasher
	issuer     tokens.Issuer
	idgen      idgen.Generator
	refreshTTL time.Duration
}

func NewService(db *gormw.DB, h hasher.PasswordHasher, issuer tokens.Issuer, gen idgen.Generator, refreshTTL time.Duration) *Service {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Service{
		db:         db,
		hasher:     h,
		issuer:     issuer,
		idgen:      gen,
		refreshTTL: refreshTTL,
	}
}

// LoginResult is returned to the HTTP layer on successful login.
type LoginResult struct {
	User         *models.UserView
	AccessToken  string
	RefreshToken string
}

// TokenPair is returned on successful refresh token rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errs.Validation("password must be at least 8 characters long")
	}

	hasNumber := false
	hasLower := false
	hasUpper := false
	for _, char := range password {
		switch {
		case char >= '0' && char <= '9':
			hasNumber = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		}
	}

	if !hasNumber || !hasLower || !hasUpper {
		return errs.Validation("password must contain upper case, lower case and digit characters")
	}

	return nil
}

// Register creates a new user. Duplicate username or email is pre-checked
// and reported as a conflict rather than surfacing the unique constraint.
func (s *Service) Register(username, email, password string) (*models.UserView, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, errs.Validation("username must not be empty")
	}
	if email == "" {
		return nil, errs.Validation("email must not be empty")
	}
	if !usernameRegex.MatchString(username) {
		return nil, errs.Validation("username must be 3-50 characters of letters, numbers, hyphens and underscores")
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, errs.Validation("invalid email format")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := storage.GetUserByUsername(s.db, username); err == nil {
		return nil, errs.Conflict("username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error().Err(err).Str("username", username).Msg("Failed to check username existence")
		return nil, errs.Internal("registration failed, please retry")
	}

	if _, err := storage.GetUserByEmail(s.db, email); err == nil {
		return nil, errs.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error().Err(err).Msg("Failed to check email existence")
		return nil, errs.Internal("registration failed, please retry")
	}

	userID, err := s.idgen.NextID()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate user ID")
		return nil, errs.Internal("registration failed, please retry")
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return nil, errs.Internal("registration failed, please retry")
	}

	user := &models.User{
		UserID:         userID,
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
	}
	if err := storage.CreateUser(s.db, user); err != nil {
		logger.Error().Err(err).Msg("Failed to create user")
		return nil, errs.Internal("registration failed, please retry")
	}

	return user.View(), nil
}

// Login verifies the credentials and on success issues an access token and a
// fresh refresh token, recording the latter's fingerprint as a new active
// record. User lookup and password failures keep distinct business codes but
// the same 401 status.
func (s *Service) Login(email, username, password, device string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if password == "" {
		return nil, errs.Validation("password must not be empty")
	}
	if email == "" && username == "" {
		return nil, errs.Validation("email or username is required")
	}

	var (
		user *models.User
		err  error
	)
	if email != "" {
		user, err = storage.GetUserByEmail(s.db, email)
	} else {
		user, err = storage.GetUserByUsername(s.db, username)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.UserNotFound()
		}
		logger.Error().Err(err).Msg("Database error during login")
		return nil, errs.Internal("login failed, please retry")
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, errs.PasswordMismatch()
	}

	accessToken, err := s.issuer.IssueAccess(user.UserID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue access token")
		return nil, errs.Internal("failed to issue tokens, please retry")
	}

	refreshToken, err := s.issuer.IssueRefresh(user.UserID, s.refreshTTL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue refresh token")
		return nil, errs.Internal("failed to issue tokens, please retry")
	}

	if _, err := storage.RecordLogin(s.db, user.ID, refreshToken, s.refreshTTL, device); err != nil {
		logger.Error().Err(err).Msg("Failed to record refresh token")
		return nil, errs.Internal("failed to issue tokens, please retry")
	}

	return &LoginResult{
		User:         user.View(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Rotate exchanges an active refresh token for a fresh access+refresh pair.
// The old record is revoked and the new one created in a single transaction,
// so a raw refresh token is usable exactly once: of two concurrent rotations
// one wins and the other gets an invalid-refresh-token error.
func (s *Service) Rotate(rawToken string) (*TokenPair, error) {
	user, record, err := s.findActiveRecord(rawToken)
	if err != nil {
		return nil, err
	}

	// Server side expiry is enforced independently of the exp baked into the
	// signed token, so revocation policy can force tokens out early.
	if record.Expired(time.Now()) {
		if err := storage.Revoke(s.db, record); err != nil {
			logger.Error().Err(err).Msg("Failed to revoke expired refresh token")
			return nil, errs.Internal("token refresh failed, please retry")
		}
		return nil, errs.RefreshTokenExpired()
	}

	accessToken, err := s.issuer.IssueAccess(user.UserID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue access token")
		return nil, errs.Internal("token refresh failed, please retry")
	}

	newRefreshToken, err := s.issuer.IssueRefresh(user.UserID, s.refreshTTL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue refresh token")
		return nil, errs.Internal("token refresh failed, please retry")
	}

	if _, err := storage.Rotate(s.db, record, newRefreshToken, s.refreshTTL); err != nil {
		if errors.Is(err, storage.ErrNotActive) {
			// A concurrent rotation won the guarded update.
			return nil, errs.InvalidRefreshToken()
		}
		logger.Error().Err(err).Msg("Failed to rotate refresh token")
		return nil, errs.Internal("token refresh failed, please retry")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Revoke is the logout path. Unlike the store level revoke it is not
// idempotent: revoking a token with no active record fails, matching the
// rotate path.
func (s *Service) Revoke(rawToken string) error {
	_, record, err := s.findActiveRecord(rawToken)
	if err != nil {
		return err
	}

	if err := storage.Revoke(s.db, record); err != nil {
		logger.Error().Err(err).Msg("Failed to revoke refresh token")
		return errs.Internal("logout failed, please retry")
	}

	return nil
}

// Profile returns the public view of a user by external identity.
func (s *Service) Profile(userID uint64) (*models.UserView, error) {
	user, err := storage.GetUserByUserID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("user not found")
		}
		logger.Error().Err(err).Msg("Database error during profile lookup")
		return nil, errs.Internal("profile lookup failed, please retry")
	}
	return user.View(), nil
}

// findActiveRecord authorizes a rotate/revoke call: the signature on the raw
// token names the owner, then the store must hold a matching active record.
// A missing, revoked or forged token all collapse to the same error.
func (s *Service) findActiveRecord(rawToken string) (*models.User, *models.RefreshToken, error) {
	userID, err := s.issuer.IdentityFromRefresh(rawToken)
	if err != nil {
		return nil, nil, errs.InvalidRefreshToken()
	}

	user, err := storage.GetUserByUserID(s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.InvalidRefreshToken()
		}
		logger.Error().Err(err).Msg("Database error during refresh token lookup")
		return nil, nil, errs.Internal("token lookup failed, please retry")
	}

	record, err := storage.FindActive(s.db, user.ID, rawToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.InvalidRefreshToken()
		}
		logger.Error().Err(err).Msg("Database error during refresh token lookup")
		return nil, nil, errs.Internal("token lookup failed, please retry")
	}

	return user, record, nil
}
