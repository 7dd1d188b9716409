package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lunch-order/internal/config"
	"lunch-order/internal/domain"
	"lunch-order/internal/repository"
	"lunch-order/internal/service/email"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	ErrEmailExists        = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", domain.ErrNotFound)
	ErrInviteInvalid      = fmt.Errorf("%w: invite is invalid or expired", domain.ErrValidation)
)

type Service interface {
	Register(ctx context.Context, input domain.CreateUserInput) (*domain.User, *domain.TokenPair, error)
	Login(ctx context.Context, input domain.LoginInput) (*domain.User, *domain.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ValidateAccessToken(token string) (*Claims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	CreateInvite(ctx context.Context, inviter *domain.User, input domain.CreateInviteInput) (*domain.Invite, error)
	AcceptInvite(ctx context.Context, input domain.AcceptInviteInput) (*domain.User, *domain.TokenPair, error)
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	inviteRepo   repository.InviteRepository
	emailService email.Service
	cfg          *config.Config
	logger       *slog.Logger
}

func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	inviteRepo repository.InviteRepository,
	emailService email.Service,
	cfg *config.Config,
	logger *slog.Logger,
) Service {
	return &service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		inviteRepo:   inviteRepo,
		emailService: emailService,
		cfg:          cfg,
		logger:       logger.With("component", "auth"),
	}
}

func validateCredentials(emailAddr, password, fullName string) error {
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	if len(strings.TrimSpace(fullName)) < 2 {
		return fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}
	return nil
}

// Register creates a regular user with default notification preferences.
func (s *service) Register(ctx context.Context, input domain.CreateUserInput) (*domain.User, *domain.TokenPair, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateCredentials(input.Email, input.Password, input.FullName); err != nil {
		return nil, nil, err
	}

	user, err := s.createUser(ctx, input.Email, input.Password, input.FullName, string(domain.RoleUser))
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *service) createUser(ctx context.Context, emailAddr, password, fullName, role string) (*domain.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:                      uuid.New(),
		Email:                   emailAddr,
		PasswordHash:            string(hashedPassword),
		FullName:                strings.TrimSpace(fullName),
		Role:                    role,
		IsActive:                true,
		NotificationPreferences: domain.DefaultPreferences(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *service) Login(ctx context.Context, input domain.LoginInput) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	session, err := s.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, user)
}

// Logout revokes every refresh session of the user. Access tokens already
// issued stay valid until they expire.
func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CreateInvite stores a hashed single-use token and mails the raw token to
// the invitee. Only superusers may invite admins.
func (s *service) CreateInvite(ctx context.Context, inviter *domain.User, input domain.CreateInviteInput) (*domain.Invite, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}

	role := domain.UserRole(input.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}
	if role != domain.RoleUser && !inviter.HasRole(string(domain.RoleSuperuser)) {
		return nil, fmt.Errorf("%w: only superusers can invite %s accounts", domain.ErrForbidden, role)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	rawToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	invite := &domain.Invite{
		ID:        uuid.New(),
		Email:     emailAddr,
		Role:      string(role),
		TokenHash: hashToken(rawToken),
		InvitedBy: inviter.ID,
		ExpiresAt: time.Now().Add(s.cfg.InviteExpiry),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}

	if err := s.emailService.SendInviteEmail(ctx, invite.Email, inviter.FullName, rawToken); err != nil && !errors.Is(err, email.ErrDisabled) {
		s.logger.Error("failed to send invite email", "invite_id", invite.ID, "error", err)
	}

	return invite, nil
}

// AcceptInvite turns a pending invite into an account with default
// notification preferences and signs the new user in.
func (s *service) AcceptInvite(ctx context.Context, input domain.AcceptInviteInput) (*domain.User, *domain.TokenPair, error) {
	if input.Token == "" {
		return nil, nil, ErrInviteInvalid
	}

	invite, err := s.inviteRepo.GetPendingByTokenHash(ctx, hashToken(input.Token))
	if err != nil {
		return nil, nil, err
	}
	if invite == nil || time.Now().After(invite.ExpiresAt) {
		return nil, nil, ErrInviteInvalid
	}

	if err := validateCredentials(invite.Email, input.Password, input.FullName); err != nil {
		return nil, nil, err
	}

	user, err := s.createUser(ctx, invite.Email, input.Password, input.FullName, invite.Role)
	if err != nil {
		return nil, nil, err
	}

	if err := s.inviteRepo.MarkAccepted(ctx, invite.ID); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *service) generateTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessClaims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.JWTAccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID.String(),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refreshTokenRaw := uuid.New().String()
	refreshTokenHash := hashToken(refreshTokenRaw)

	session := &repository.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: refreshTokenHash,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
	}, nil
}

func randomToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
