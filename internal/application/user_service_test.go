package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/domain/repository"
	"github.com/taskvault/taskvault/pkg/avatar"
	"github.com/taskvault/taskvault/pkg/helpers"
	"github.com/taskvault/taskvault/pkg/token"
	"github.com/taskvault/taskvault/pkg/validation"
)

func newTestUserService() (*UserService, *memUserRepo, *memSessionRepo) {
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	tokens := token.NewManager("test-secret", time.Hour)
	svc := NewUserService(users, sessions, tokens, nil, nil, avatar.PNGProcessor{}, nil, "")
	return svc, users, sessions
}

func registerTestUser(t *testing.T, svc *UserService) (string, string) {
	t.Helper()
	u, tok, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)
	return u.ID, tok
}

func TestRegister_HashesPasswordAndOpensSession(t *testing.T) {
	t.Parallel()
	svc, users, sessions := newTestUserService()

	userID, tok := registerTestUser(t, svc)

	stored, err := users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotEqual(t, "longenough", stored.Password)
	require.True(t, helpers.CheckPassword(stored.Password, "longenough"))

	ok, err := sessions.Exists(context.Background(), userID, tok)
	require.NoError(t, err)
	require.True(t, ok)

	subject, err := svc.Tokens.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, userID, subject)
}

func TestLogin_InvalidCredentialsUndifferentiated(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestUserService()
	registerTestUser(t, svc)

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "longenough")
	_, _, wrongPassErr := svc.Login(context.Background(), "ada@example.com", "wrongpass")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	// An attacker probing emails must get the same answer either way.
	require.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

func TestLogin_NormalizesEmailCase(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestUserService()
	registerTestUser(t, svc)

	_, tok, err := svc.Login(context.Background(), "ADA@Example.COM", "longenough")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	t.Parallel()
	svc, _, sessions := newTestUserService()
	userID, tok1 := registerTestUser(t, svc)

	_, tok2, err := svc.Login(context.Background(), "ada@example.com", "longenough")
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok2)

	require.NoError(t, svc.Logout(context.Background(), userID, tok1))

	ok1, _ := sessions.Exists(context.Background(), userID, tok1)
	ok2, _ := sessions.Exists(context.Background(), userID, tok2)
	require.False(t, ok1)
	require.True(t, ok2)

	// Revoking an already-revoked token is a no-op, not an error.
	require.NoError(t, svc.Logout(context.Background(), userID, tok1))
}

func TestLogoutAll_ClearsRegistryButAllowsFreshLogin(t *testing.T) {
	t.Parallel()
	svc, _, sessions := newTestUserService()
	userID, _ := registerTestUser(t, svc)
	_, _, err := svc.Login(context.Background(), "ada@example.com", "longenough")
	require.NoError(t, err)
	require.Equal(t, 2, sessions.count(userID))

	require.NoError(t, svc.LogoutAll(context.Background(), userID))
	require.Equal(t, 0, sessions.count(userID))

	_, tok, err := svc.Login(context.Background(), "ada@example.com", "longenough")
	require.NoError(t, err)
	ok, _ := sessions.Exists(context.Background(), userID, tok)
	require.True(t, ok)
}

func TestConcurrentLogouts_NoLostRevocation(t *testing.T) {
	t.Parallel()
	svc, _, sessions := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	var toks []string
	for i := 0; i < 8; i++ {
		_, tok, err := svc.Login(context.Background(), "ada@example.com", "longenough")
		require.NoError(t, err)
		toks = append(toks, tok)
	}

	var wg sync.WaitGroup
	for _, tok := range toks {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			_ = svc.Logout(context.Background(), userID, tok)
		}(tok)
	}
	wg.Wait()

	for _, tok := range toks {
		ok, err := sessions.Exists(context.Background(), userID, tok)
		require.NoError(t, err)
		require.False(t, ok, "token survived a concurrent revoke")
	}
}

func TestUpdateProfile_RejectsUnknownFieldWholesale(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	p, err := validation.DecodeUpdate([]byte(`{"name": "Grace", "role": "admin"}`))
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), userID, p)
	require.ErrorIs(t, err, validation.ErrInvalidUpdateFields)

	// The allowed half of the payload must not have been applied.
	u, err := users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "Ada", u.Name)
}

func TestUpdateProfile_PasswordRehashedOnce(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	before, _ := users.GetByID(context.Background(), userID)

	p, err := validation.DecodeUpdate([]byte(`{"password": "evenlonger"}`))
	require.NoError(t, err)
	_, err = svc.UpdateProfile(context.Background(), userID, p)
	require.NoError(t, err)

	after, _ := users.GetByID(context.Background(), userID)
	require.NotEqual(t, before.Password, after.Password)
	require.NotEqual(t, "evenlonger", after.Password)
	require.True(t, helpers.CheckPassword(after.Password, "evenlonger"))
	require.False(t, helpers.CheckPassword(after.Password, "longenough"))
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestUserService()
	registerTestUser(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Other",
		Email:    "ADA@example.com",
		Password: "longenough",
	})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUpdateProfile_DuplicateEmailRejected(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestUserService()
	registerTestUser(t, svc)
	other, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Grace",
		Email:    "grace@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	p, _ := validation.DecodeUpdate([]byte(`{"email": "ada@example.com"}`))
	_, err = svc.UpdateProfile(context.Background(), other.ID, p)
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUpdateProfile_InvalidEmailRejected(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	p, _ := validation.DecodeUpdate([]byte(`{"email": "not-an-email"}`))
	_, err := svc.UpdateProfile(context.Background(), userID, p)
	require.ErrorIs(t, err, ErrValidation)

	u, err := users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)
}

func TestUpdateProfile_NegativeAgeRejected(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	p, _ := validation.DecodeUpdate([]byte(`{"age": -3}`))
	_, err := svc.UpdateProfile(context.Background(), userID, p)
	require.ErrorIs(t, err, ErrValidation)

	u, err := users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.Nil(t, u.Age)
}

func TestUpdateProfile_ShortPasswordRejected(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	p, err := validation.DecodeUpdate([]byte(`{"password": "short"}`))
	require.NoError(t, err)
	_, err = svc.UpdateProfile(context.Background(), userID, p)
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteAccount_ReturnsDeletedUser(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	u, err := svc.DeleteAccount(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)

	_, err = users.GetByID(context.Background(), userID)
	require.Error(t, err)
}

func TestGetAvatar_EmptyLooksAbsent(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestUserService()
	userID, _ := registerTestUser(t, svc)

	_, err := svc.GetAvatar(context.Background(), userID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
