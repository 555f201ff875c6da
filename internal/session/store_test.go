package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthAPI scripts login and profile responses.
type fakeAuthAPI struct {
	loginResp *api.LoginResponse
	loginErr  error
	meResp    *api.User
	meErr     error

	loginCalls int
	meCalls    int
}

func (f *fakeAuthAPI) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Me(ctx context.Context) (*api.User, error) {
	f.meCalls++
	return f.meResp, f.meErr
}

func sessionFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestLoginEstablishesSession(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meResp:    &api.User{ID: 1, Username: "admin", IsAdmin: true},
	}
	store := NewStore(path, fake, logger.Noop())

	user, err := store.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin", user.Username)

	assert.True(t, store.Authenticated())
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)

	// The record hit disk with owner-only permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFailedLoginLeavesSessionUntouched(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meResp:    &api.User{Username: "admin"},
	}
	store := NewStore(path, fake, logger.Noop())

	_, err := store.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	// Second attempt with bad credentials fails; the first session must
	// survive intact.
	fake.loginResp = nil
	fake.loginErr = errors.New(errors.ErrAuth, "Incorrect username or password", "")

	_, err = store.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))

	assert.True(t, store.Authenticated())
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
	require.NotNil(t, store.User())
	assert.Equal(t, "admin", store.User().Username)
}

func TestFailedLoginWhileLoggedOut(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{loginErr: errors.New(errors.ErrAuth, "Incorrect username or password", "")}
	store := NewStore(path, fake, logger.Noop())

	_, err := store.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	assert.False(t, store.Authenticated())
	_, ok := store.Token()
	assert.False(t, ok)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProfileFetchFailureStillAuthenticates(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meErr:     errors.New(errors.ErrAPI, "Server returned 500 Internal Server Error", ""),
	}
	store := NewStore(path, fake, logger.Noop())

	user, err := store.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.True(t, store.Authenticated())
	assert.Nil(t, store.User())
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestLogoutIdempotent(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meResp:    &api.User{Username: "admin"},
	}
	store := NewStore(path, fake, logger.Noop())

	_, err := store.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	store.Logout()
	assert.False(t, store.Authenticated())
	_, ok := store.Token()
	assert.False(t, ok)
	assert.Nil(t, store.User())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Logging out again is harmless.
	store.Logout()
	store.Logout()
	assert.False(t, store.Authenticated())
}

func TestInvalidateClearsSession(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meResp:    &api.User{Username: "admin"},
	}
	log := logger.NewBufferLogger()
	store := NewStore(path, fake, log)

	_, err := store.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	store.Invalidate()
	assert.False(t, store.Authenticated())
	assert.True(t, log.HasLevel("info"))

	// Invalidate on a dead session stays quiet and harmless.
	log.Messages = nil
	store.Invalidate()
	assert.False(t, log.HasLevel("info"))
}

func TestRehydrateAcrossRestarts(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meResp:    &api.User{ID: 1, Username: "admin"},
	}

	first := NewStore(path, fake, logger.Noop())
	_, err := first.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	// A fresh store over the same file picks the session back up.
	second := NewStore(path, &fakeAuthAPI{}, logger.Noop())
	assert.True(t, second.Authenticated())
	token, ok := second.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
	require.NotNil(t, second.User())
	assert.Equal(t, "admin", second.User().Username)
}

func TestRehydrateCorruptFile(t *testing.T) {
	path := sessionFile(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path, &fakeAuthAPI{}, logger.Noop())
	assert.False(t, store.Authenticated())

	// The unreadable record is gone.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRehydrateEmptyToken(t *testing.T) {
	path := sessionFile(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"token": ""}`), 0o600))

	store := NewStore(path, &fakeAuthAPI{}, logger.Noop())
	assert.False(t, store.Authenticated())
}

func TestRefreshUser(t *testing.T) {
	path := sessionFile(t)
	fake := &fakeAuthAPI{
		loginResp: &api.LoginResponse{AccessToken: "tok-1"},
		meResp:    &api.User{Username: "admin"},
	}
	store := NewStore(path, fake, logger.Noop())

	_, err := store.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	fake.meResp = &api.User{Username: "admin", Email: "admin@web-01"}
	user, err := store.RefreshUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin@web-01", user.Email)
	assert.Equal(t, "admin@web-01", store.User().Email)
}

func TestRefreshUserLoggedOut(t *testing.T) {
	store := NewStore(sessionFile(t), &fakeAuthAPI{}, logger.Noop())

	_, err := store.RefreshUser(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}
