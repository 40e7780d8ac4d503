package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/control-horario/jornada-tracker/internal/database"
	"github.com/control-horario/jornada-tracker/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultSessionTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
)

// UserStore is the slice of the user DAO the service needs.
type UserStore interface {
	Insert(ctx context.Context, dto database.InsertUserDTO) (model.ID, error)
	Get(ctx context.Context, id model.ID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionStore is the slice of the session DAO the service needs.
type SessionStore interface {
	Insert(ctx context.Context, dto database.InsertSessionDTO) (model.ID, error)
	GetByToken(ctx context.Context, token string) (model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// Service owns identity: password sign-up/sign-in and bearer-token
// sessions with a fixed TTL.
type Service struct {
	logger     *slog.Logger
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func New(logger *slog.Logger, users UserStore, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &Service{
		logger:     logger.With("module", "auth"),
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SignUp registers a new user. A duplicate email surfaces as
// model.ErrExists.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return model.User{}, err
	}

	id, err := s.users.Insert(ctx, database.InsertUserDTO{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user signed up", "userId", id, "email", email)

	return s.users.Get(ctx, id)
}

// SignIn verifies the password and opens a session, returning its
// bearer token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.User{}, ErrInvalidCredentials
		}

		return "", model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}

	token := uuid.NewString()

	_, err = s.sessions.Insert(ctx, database.InsertSessionDTO{
		Token:     token,
		User:      user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	})
	if err != nil {
		return "", model.User{}, err
	}

	s.logger.Info("user signed in", "userId", user.ID)

	return token, user, nil
}

// SignOut discards the session behind the token. Unknown tokens are not
// an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

// Session resolves a bearer token to its user. Unknown and expired
// tokens both surface as ErrInvalidToken.
func (s *Service) Session(ctx context.Context, token string) (model.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, ErrInvalidToken
		}

		return model.User{}, err
	}

	if session.ExpiresAt.Before(s.now()) {
		return model.User{}, ErrInvalidToken
	}

	return s.users.Get(ctx, session.User)
}
