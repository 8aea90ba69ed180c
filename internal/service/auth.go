package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"safetydesk/internal/models"
	"safetydesk/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var (
	ErrAgentAlreadyExists = errors.New("agent already exists")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationClosed = errors.New("registration is closed")
)

type AuthService interface {
	// RegisterFirstAdmin creates the bootstrap admin account. Allowed
	// only while no agents exist; further accounts are provisioned out
	// of band.
	RegisterFirstAdmin(username, email, password string) (*models.Agent, error)
	Login(username, password string) (string, time.Time, error)
}

type authService struct {
	repo      repository.AgentRepository
	jwtSecret []byte
	logger    *zap.Logger
}

// NewAuthService creates the agent authentication service. The JWT
// signing secret is injected from the environment at startup.
func NewAuthService(repo repository.AgentRepository, jwtSecret []byte, logger *zap.Logger) AuthService {
	return &authService{
		repo:      repo,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (s *authService) RegisterFirstAdmin(username, email, password string) (*models.Agent, error) {
	count, err := s.repo.Count()
	if err != nil {
		s.logger.Error("Failed to count agents", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing agents: %w", err)
	}
	if count > 0 {
		return nil, ErrRegistrationClosed
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	agent := &models.Agent{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	if err := s.repo.Create(agent); err != nil {
		s.logger.Error("Failed to create agent", zap.Error(err))
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return agent, nil
}

func (s *authService) Login(username, password string) (string, time.Time, error) {
	agent, err := s.repo.GetByUsername(username)
	if err != nil {
		s.logger.Error("Failed to get agent by username", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to retrieve agent: %w", err)
	}
	if agent == nil {
		return "", time.Time{}, ErrAgentNotFound
	}

	if !verifyPassword(agent.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(12 * time.Hour)
	claims := &models.Claims{
		AgentID:  agent.ID,
		Username: agent.Username,
		Email:    agent.Email,
		Role:     agent.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Agent logged in", zap.String("username", agent.Username), zap.String("role", agent.Role))

	return tokenString, expirationTime, nil
}

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// hashPassword uses Argon2id to hash the password.
// Format: $argon2id$v=19$m=65536,t=1,p=4$BASE64_SALT$BASE64_HASH
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash), nil
}

// verifyPassword compares a plaintext password with a stored hash.
func verifyPassword(hashedPassword, password string) bool {
	var version int
	var m, t uint32
	var p uint8
	var encodedSalt, encodedHash string

	n, err := fmt.Sscanf(hashedPassword, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s", &version, &m, &t, &p, &encodedSalt)
	if err != nil || n != 5 {
		return false
	}

	// Sscanf leaves salt$hash joined in the last token.
	idx := -1
	for i, r := range encodedSalt {
		if r == '$' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	encodedHash = encodedSalt[idx+1:]
	encodedSalt = encodedSalt[:idx]

	salt, err := base64.RawStdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false
	}
	storedHash, err := base64.RawStdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false
	}

	comparisonHash := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(storedHash)))

	return subtle.ConstantTimeCompare(comparisonHash, storedHash) == 1
}
