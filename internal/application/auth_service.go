package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Sessions *SessionStore
	Notifier *Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, sessions *SessionStore, notifier *Notifier, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Sessions: sessions, Notifier: notifier, Logger: logger, Now: time.Now}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email                string
	Phone                string
	FirstName            string
	LastName             string
	Password             string
	Role                 entity.Role
	BusinessName         string
	BusinessRegistration string
}

type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Register creates a family or vendor account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	if in.Role != entity.RoleFamily && in.Role != entity.RoleVendor {
		return nil, TokenPair{}, invalid("role must be family or vendor")
	}
	if in.Role == entity.RoleVendor && (strings.TrimSpace(in.BusinessName) == "" || strings.TrimSpace(in.BusinessRegistration) == "") {
		return nil, TokenPair{}, invalid("business_name and business_registration are required for vendors")
	}
	if !helpers.StrongPassword(in.Password) {
		return nil, TokenPair{}, invalid("password must be at least %d characters and contain a letter and a digit", helpers.MinPasswordLength)
	}
	email := normalizeEmail(in.Email)
	if err := s.ensureFree(ctx, email, in.Phone, ""); err != nil {
		return nil, TokenPair{}, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &entity.User{
		Email:            email,
		Phone:            strings.TrimSpace(in.Phone),
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		PasswordHash:     hash,
		Role:             in.Role,
		SubscriptionPlan: entity.PlanFree,
		IsActive:         true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}
	tp, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.Notifier.Welcome(ctx, u)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	}
	return u, tp, nil
}

// ensureFree checks email and phone uniqueness, ignoring the user selfID.
func (s *AuthService) ensureFree(ctx context.Context, email, phone, selfID string) error {
	if email != "" {
		u, err := s.Users.GetByEmail(ctx, email)
		if err == nil && u.ID != selfID {
			return ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
	}
	if phone != "" {
		u, err := s.Users.GetByPhone(ctx, strings.TrimSpace(phone))
		if err == nil && u.ID != selfID {
			return ErrPhoneTaken
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
	}
	return nil
}

// Login validates credentials and issues a fresh session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, TokenPair{}, ErrAccountDisabled
	}
	tp, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, tp, nil
}

// IssueTokens generates an access/refresh pair bound to a new session id and
// records the session, replacing any previous one.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Sessions.Save(ctx, u.ID, sid, string(u.Role)); err != nil {
		helpers.LogError(s.Logger, "store session failed", err, logrus.Fields{"user_id": u.ID})
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh verifies a refresh token against the live session and rotates both
// tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidSession
	}
	ok, err := s.Sessions.Valid(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !ok {
		return nil, TokenPair{}, ErrInvalidSession
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidSession
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !u.IsActive {
		return nil, TokenPair{}, ErrAccountDisabled
	}
	tp, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, tp, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Sessions.Revoke(ctx, userID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*entity.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) != u.Phone {
		if err := s.ensureFree(ctx, "", *in.Phone, u.ID); err != nil {
			return nil, err
		}
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	if !helpers.StrongPassword(next) {
		return invalid("password must be at least %d characters and contain a letter and a digit", helpers.MinPasswordLength)
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, u.ID, hash)
}
