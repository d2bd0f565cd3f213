package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/taskvault/taskvault/internal/domain/entity"
	"github.com/taskvault/taskvault/internal/domain/repository"
	"github.com/taskvault/taskvault/pkg/avatar"
	"github.com/taskvault/taskvault/pkg/helpers"
	"github.com/taskvault/taskvault/pkg/mailer"
	"github.com/taskvault/taskvault/pkg/token"
	"github.com/taskvault/taskvault/pkg/validation"
)

var (
	// ErrInvalidCredentials covers both unknown account and wrong password;
	// callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation marks an entity-level constraint violation.
	ErrValidation = errors.New("validation failed")
)

// accountUpdateFields is the allow-list for partial account updates.
var accountUpdateFields = []string{"name", "email", "password", "age"}

// validate re-checks on update the field rules the register binding
// enforces.
var validate = validator.New()

// UserService owns account lifecycle, credentials, and the session registry.
type UserService struct {
	Repo      repository.UserRepository
	Sessions  repository.SessionRepository
	Tokens    *token.Manager
	Pub       *helpers.RabbitPublisher
	Logger    *logrus.Logger
	Avatars   avatar.Processor
	GCS       *storage.Client
	GCSBucket string
}

func NewUserService(repo repository.UserRepository, sessions repository.SessionRepository, tokens *token.Manager, pub *helpers.RabbitPublisher, logger *logrus.Logger, avatars avatar.Processor, gcs *storage.Client, gcsBucket string) *UserService {
	return &UserService{
		Repo:      repo,
		Sessions:  sessions,
		Tokens:    tokens,
		Pub:       pub,
		Logger:    logger,
		Avatars:   avatars,
		GCS:       gcs,
		GCSBucket: gcsBucket,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// Register creates the account (hashing the password exactly once), queues
// the welcome mail, and logs the account in with a fresh session.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Password: hash,
		Age:      in.Age,
	}
	if u.Name == "" || u.Email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	s.publishEmail(ctx, mailer.WelcomeJob(u.Email, u.Name))

	tok, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Authenticate resolves the account by email and checks the password. Both
// failure modes collapse into ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login verifies credentials and opens a new session. Each login appends its
// own registry entry; concurrent sessions are unbounded.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	tok, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *UserService) issueSession(ctx context.Context, userID string) (string, error) {
	tok, _, err := s.Tokens.Issue(userID)
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Append(ctx, userID, tok); err != nil {
		return "", err
	}
	return tok, nil
}

// Logout revokes the session holding exactly the presented token; other
// devices stay logged in.
func (s *UserService) Logout(ctx context.Context, userID, tok string) error {
	return s.Sessions.RevokeOne(ctx, userID, tok)
}

// LogoutAll clears the account's whole session registry.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.Sessions.RevokeAll(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies a whitelisted partial update. A single disallowed
// field rejects the entire payload; a password change is re-hashed here and
// nowhere else.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, p validation.UpdatePayload) (*entity.User, error) {
	if err := p.CheckAllowedFields(accountUpdateFields...); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Has("name") {
		if err := p.Unmarshal("name", &u.Name); err != nil {
			return nil, fmt.Errorf("%w: name", ErrValidation)
		}
		if strings.TrimSpace(u.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
	}
	if p.Has("email") {
		if err := p.Unmarshal("email", &u.Email); err != nil {
			return nil, fmt.Errorf("%w: email", ErrValidation)
		}
		if validate.Var(strings.TrimSpace(u.Email), "required,email") != nil {
			return nil, fmt.Errorf("%w: email must be a valid address", ErrValidation)
		}
	}
	if p.Has("age") {
		if err := p.Unmarshal("age", &u.Age); err != nil {
			return nil, fmt.Errorf("%w: age", ErrValidation)
		}
		if u.Age != nil && *u.Age < 0 {
			return nil, fmt.Errorf("%w: age must not be negative", ErrValidation)
		}
	}
	if p.Has("password") {
		var plain string
		if err := p.Unmarshal("password", &plain); err != nil || len(plain) < 7 {
			return nil, fmt.Errorf("%w: password too short", ErrValidation)
		}
		hash, err := helpers.HashPassword(plain)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the account; tasks and sessions cascade with it.
// The cancellation mail is queued after the delete commits.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return nil, err
	}
	s.publishEmail(ctx, mailer.CancellationJob(u.Email, u.Name))
	return u, nil
}

// SetAvatar stores the transcoded PNG on the account and, when a bucket is
// configured, mirrors it there and records the public URL.
func (s *UserService) SetAvatar(ctx context.Context, userID, filename string, data []byte) error {
	if !avatar.AllowedExt(filename) {
		return avatar.ErrUnsupportedImage
	}
	png, err := s.Avatars.Process(data)
	if err != nil {
		return err
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.Avatar = png
	if s.GCS != nil && s.GCSBucket != "" {
		obj := avatarObjectPath(userID)
		url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, obj, "image/png", bytes.NewReader(png))
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("avatar mirror upload failed")
		} else if err == nil {
			u.AvatarURL = url
		}
	}
	return s.Repo.Update(ctx, u)
}

// DeleteAvatar clears the stored binary and the bucket mirror.
func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.Avatar = nil
	u.AvatarURL = ""
	if s.GCS != nil && s.GCSBucket != "" {
		if err := helpers.DeleteObject(ctx, s.GCS, s.GCSBucket, avatarObjectPath(userID)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("avatar mirror delete failed")
		}
	}
	return s.Repo.Update(ctx, u)
}

// GetAvatar returns the stored PNG for any account; absent avatars are
// indistinguishable from absent accounts.
func (s *UserService) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Avatar) == 0 {
		return nil, repository.ErrNotFound
	}
	return u.Avatar, nil
}

func avatarObjectPath(userID string) string {
	return "avatars/" + userID + ".png"
}

// publishEmail hands a job to the outbound queue. Failures are logged and
// dropped; the triggering request never sees them.
func (s *UserService) publishEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"to":       job.To,
			"template": job.Template,
		}).Warn("email enqueue failed")
	}
}
