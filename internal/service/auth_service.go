package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"task-service/internal/jwt"
	"task-service/internal/model"
	"task-service/internal/repository"
)

const passwordHashCost = 8

// dummyHash is compared against when the email is unknown so that both login
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), passwordHashCost)

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,notpassword"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,min=0"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	IssueToken(ctx context.Context, userID uuid.UUID) (string, error)
	Logout(ctx context.Context, userID uuid.UUID, token string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	VerifyToken(token string) (uuid.UUID, error)
	ResolveSession(ctx context.Context, userID uuid.UUID, token string) (*model.User, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]model.SessionToken, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	signer    *jwt.Signer
	notifier  Notifier
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, signer *jwt.Signer, notifier Notifier) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		signer:    signer,
		notifier:  notifier,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)

	if err := validateStruct(&input); err != nil {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordHashCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Age:          input.Age,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	created := *user
	notifyAsync(ctx, "user.created", func() error { return s.notifier.UserCreated(created) })

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// IssueToken signs a new token and appends it to the user's active sessions.
// Existing sessions are left untouched.
func (s *authService) IssueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.signer.Generate(userID)
	if err != nil {
		return "", err
	}

	if err := s.tokenRepo.Create(ctx, userID, hashToken(token)); err != nil {
		return "", err
	}

	return token, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	return s.tokenRepo.Delete(ctx, userID, hashToken(token))
}

func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.tokenRepo.DeleteAllByUserID(ctx, userID)
}

// VerifyToken checks the signature and decodes the user id. It performs no
// I/O and therefore cannot see revocations.
func (s *authService) VerifyToken(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	userID, err := s.signer.Validate(token)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}

	return userID, nil
}

// ResolveSession loads the user only if token is still one of its active
// sessions.
func (s *authService) ResolveSession(ctx context.Context, userID uuid.UUID, token string) (*model.User, error) {
	user, err := s.userRepo.FindByIDAndToken(ctx, userID, hashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	return s.ResolveSession(ctx, userID, token)
}

func (s *authService) ListSessions(ctx context.Context, userID uuid.UUID) ([]model.SessionToken, error) {
	return s.tokenRepo.ListByUserID(ctx, userID)
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
