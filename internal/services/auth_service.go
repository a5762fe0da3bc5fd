package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vytor/codedrill/internal/backend"
	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/session"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLength = 6
	// Shown for unknown users and wrong passwords alike.
	credentialMismatchMessage = "邮箱或密码不正确"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type LoginResult struct {
	Token   string         `json:"token"`
	User    models.User    `json:"user"`
	Session models.Session `json:"session"`
}

// Claims is the payload of an issued session token.
type Claims struct {
	Email     string `json:"email"`
	StudentID string `json:"student_id"`
	jwt.RegisteredClaims
}

// AuthConfig configures token signing and session lifetimes.
type AuthConfig struct {
	Secret      []byte
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

// AuthService signs users in against the backend's account list.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Authenticate verifies a token and returns its live session.
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	backend  backend.ClientInterface
	sessions session.Store
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(client backend.ClientInterface, sessions session.Store, cfg AuthConfig) AuthService {
	return &authService{
		backend:  client,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ValidateLogin returns one message per invalid field, or nil.
func ValidateLogin(req LoginRequest) map[string]string {
	fields := map[string]string{}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		fields["email"] = "请输入邮箱"
	case !emailPattern.MatchString(email):
		fields["email"] = "请输入有效的邮箱地址"
	}

	switch {
	case req.Password == "":
		fields["password"] = "请输入密码"
	case len([]rune(req.Password)) < minPasswordLength:
		fields["password"] = "密码长度不能少于6位"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.FromContext(ctx)

	if fields := ValidateLogin(req); fields != nil {
		return nil, errors.NewFieldsError(fields)
	}
	email := strings.TrimSpace(req.Email)
	log.Debug("login attempt: email=%s remember=%t", email, req.Remember)

	users, err := s.backend.FetchUsers(ctx)
	if err != nil {
		log.Warn("failed to fetch users: %v", err)
		return nil, errors.NewUnavailableError("account backend", err)
	}

	var matched *backend.User
	for i := range users {
		if users[i].Email == email && users[i].Password == req.Password {
			matched = &users[i]
			break
		}
	}
	if matched == nil {
		log.Info("login rejected: email=%s", email)
		return nil, errors.NewUnauthorizedError(credentialMismatchMessage)
	}

	now := s.now().UTC()
	ttl := s.cfg.SessionTTL
	if req.Remember {
		ttl = s.cfg.RememberTTL
	}
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    string(matched.ID),
		Email:     matched.Email,
		StudentID: matched.StudentID,
		Remember:  req.Remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	token, err := s.issueToken(sess)
	if err != nil {
		log.Error("failed to sign token: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Error("failed to store session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("user %s signed in (session %s)", sess.UserID, sess.ID)
	return &LoginResult{
		Token:   token,
		Session: sess,
		User: models.User{
			ID:        sess.UserID,
			Email:     matched.Email,
			StudentID: matched.StudentID,
			Name:      matched.Name,
		},
	}, nil
}

func (s *authService) issueToken(sess models.Session) (string, error) {
	claims := Claims{
		Email:     sess.Email,
		StudentID: sess.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			ID:        sess.ID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

func (s *authService) parseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, stderrors.New("invalid token")
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, stderrors.New("token is missing subject or id")
	}
	return claims, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	log := logger.FromContext(ctx)

	claims, err := s.parseToken(token)
	if err != nil {
		log.Debug("rejected token: %v", err)
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			return nil, errors.NewUnauthorizedError("session expired or signed out")
		}
		log.Error("failed to load session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if sess.UserID != claims.Subject {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		logger.FromContext(ctx).Error("failed to delete session: %v", err)
		return errors.NewInternalError(err)
	}
	logger.FromContext(ctx).Info("session %s signed out", sessionID)
	return nil
}
