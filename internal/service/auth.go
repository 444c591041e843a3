package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthService struct {
	userRepository repository.UserRepository
	jwtSecret      string
	isProduction   bool
	jwtExpiry      time.Duration
}

func NewAuthService(userRepository repository.UserRepository, jwtSecret string, isProduction bool, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		jwtSecret:      jwtSecret,
		isProduction:   isProduction,
		jwtExpiry:      jwtExpiry,
	}
}

// EnsureAdmin seeds the admin account on startup if it does not exist.
func (s *AuthService) EnsureAdmin(username, password string) error {
	username = strings.TrimSpace(strings.ToLower(username))

	_, err := s.userRepository.ByUsername(username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	err = s.userRepository.Create(&model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.Info("seeded admin user", "username", username)
	return nil
}

func (s *AuthService) Login(username, password string) (*model.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

func (s *AuthService) ChangePassword(userID, newPassword string) error {
	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.userRepository.UpdatePassword(userID, hash)
}

func (s *AuthService) UserByID(userID string) (*model.User, error) {
	return s.userRepository.ByID(userID)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtExpiry.Seconds()),
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}
