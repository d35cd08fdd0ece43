// Package auth registers and signs in users and issues the bearer tokens
// that identify the owner of every request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/livestock/internal/config"
	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/service/records"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const fieldPassword = "password"

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
)

// SignUpInput is the registration payload.
type SignUpInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// SignInInput is the login payload.
type SignInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is returned by sign up and sign in.
type Session struct {
	Token string              `json:"token"`
	User  repository.Document `json:"user"`
}

// Service manages user accounts.
type Service struct {
	store  repository.Store
	secret []byte
	ttl    time.Duration
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the auth service.
func NewService(store repository.Store, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		cost:   bcrypt.DefaultCost,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SignUp registers a new user and returns a session for it.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	doc, verr := models.User.Validate(map[string]any{
		"name":        in.Name,
		"email":       in.Email,
		"phoneNumber": in.PhoneNumber,
	}, schema.Create)
	if len(in.Password) < MinPasswordLength {
		msg := fmt.Sprintf("must be at least %d characters", MinPasswordLength)
		var existing *schema.ValidationError
		if errors.As(verr, &existing) {
			existing.Fields = append(existing.Fields, schema.FieldError{Field: fieldPassword, Message: msg})
		} else {
			verr = schema.Invalid(fieldPassword, msg)
		}
	}
	if verr != nil {
		return Session{}, verr
	}

	_, err := s.store.FindOne(ctx, models.CollectionUsers, repository.Filter{repository.Eq("email", doc["email"])})
	switch {
	case err == nil:
		return Session{}, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	id := primitive.NewObjectID()
	now := s.now()
	doc[schema.FieldID] = id
	doc[fieldPassword] = string(hash)
	doc[schema.FieldCreatedAt] = now
	doc[schema.FieldUpdatedAt] = now

	if err := s.store.Insert(ctx, models.CollectionUsers, doc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("userId", id.Hex()))

	return s.session(records.OwnerFromID(id), doc)
}

// SignIn checks credentials and returns a session.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	doc, err := s.store.FindOne(ctx, models.CollectionUsers, repository.Filter{repository.Eq("email", email)})
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, _ := doc[fieldPassword].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	id, ok := doc[schema.FieldID].(primitive.ObjectID)
	if !ok {
		return Session{}, fmt.Errorf("user %v has no object id", doc[schema.FieldID])
	}
	return s.session(records.OwnerFromID(id), doc)
}

// Profile returns the public fields of the owner's account.
func (s *Service) Profile(ctx context.Context, owner records.Owner) (repository.Document, error) {
	doc, err := s.store.FindOne(ctx, models.CollectionUsers, repository.Filter{repository.Eq(schema.FieldID, owner.ID())})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return public(doc), nil
}

func (s *Service) session(owner records.Owner, doc repository.Document) (Session, error) {
	token, err := s.issue(owner)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: public(doc)}, nil
}

func public(doc repository.Document) repository.Document {
	out := make(repository.Document, len(doc))
	for k, v := range doc {
		if k != fieldPassword {
			out[k] = v
		}
	}
	return out
}
