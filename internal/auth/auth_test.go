package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"internship_portal/internal/lib/jwt"
	"internship_portal/internal/models"
	"internship_portal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]models.User), nextID: 1}
}

func (s *fakeStore) SaveUser(_ context.Context, email, username, firstName string, passHash []byte, otpCode int, otpExpiresAt time.Time) (int64, error) {
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return 0, storage.ErrUserExists
		}
	}

	id := s.nextID
	s.nextID++

	code := otpCode
	expires := otpExpiresAt

	s.users[id] = models.User{
		ID:           id,
		Email:        email,
		Username:     username,
		FirstName:    firstName,
		PassHash:     passHash,
		OTPCode:      &code,
		OTPExpiresAt: &expires,
		CreatedAt:    time.Now(),
	}

	return id, nil
}

func (s *fakeStore) MarkVerified(_ context.Context, userID int64) error {
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.IsVerified = true
	u.IsActive = true
	u.OTPCode = nil
	u.OTPExpiresAt = nil
	s.users[userID] = u

	return nil
}

func (s *fakeStore) ResetOTP(_ context.Context, userID int64, otpCode int, otpExpiresAt time.Time) error {
	u, ok := s.users[userID]
	if !ok || u.IsVerified {
		return nil
	}

	u.OTPCode = &otpCode
	u.OTPExpiresAt = &otpExpiresAt
	s.users[userID] = u

	return nil
}

func (s *fakeStore) UpdateUserFlags(_ context.Context, userID int64, isActive, isStaff *bool) error {
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	if isActive != nil {
		u.IsActive = *isActive
	}
	if isStaff != nil {
		u.IsStaff = *isStaff
	}
	s.users[userID] = u

	return nil
}

func (s *fakeStore) UserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) UserByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (s *fakeStore) Users(_ context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range s.users {
		users = append(users, u)
	}

	return users, nil
}

type fakeMailer struct {
	sent []models.EmailMessage
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg models.EmailMessage) error {
	if m.fail {
		return assert.AnError
	}

	m.sent = append(m.sent, msg)

	return nil
}

func newTestAuth(store *fakeStore, mail *fakeMailer) *Auth {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	return New(log, store, store, mail, tokens, 10*time.Minute)
}

func TestRegister_CreatesUnverifiedWithOTP(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	before := time.Now()

	id, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)

	u := store.users[id]
	assert.False(t, u.IsVerified)
	assert.False(t, u.IsActive)
	require.NotNil(t, u.OTPCode)
	assert.GreaterOrEqual(t, *u.OTPCode, 100000)
	assert.LessOrEqual(t, *u.OTPCode, 999999)
	require.NotNil(t, u.OTPExpiresAt)
	assert.WithinDuration(t, before.Add(10*time.Minute), *u.OTPExpiresAt, 5*time.Second)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	_, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)

	_, err = a.Register(context.Background(), "a@x.com", "alice2", "Alice", "password1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_SucceedsWhenEmailFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{fail: true})

	_, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	assert.NoError(t, err)
}

func TestVerifyOTP_SuccessThenReplayFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	id, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)

	code := *store.users[id].OTPCode

	require.NoError(t, a.VerifyOTP(context.Background(), "a@x.com", code))

	u := store.users[id]
	assert.True(t, u.IsVerified)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.OTPCode)
	assert.Nil(t, u.OTPExpiresAt)

	// the second attempt sees a cleared code and must fail, not crash
	err = a.VerifyOTP(context.Background(), "a@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_Expired(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	id, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)

	u := store.users[id]
	past := time.Now().Add(-time.Minute)
	u.OTPExpiresAt = &past
	store.users[id] = u

	err = a.VerifyOTP(context.Background(), "a@x.com", *u.OTPCode)
	assert.ErrorIs(t, err, ErrOTPExpired)

	// no state change on failure
	after := store.users[id]
	assert.False(t, after.IsVerified)
	assert.NotNil(t, after.OTPCode)
}

func TestVerifyOTP_UnknownEmailIndistinguishable(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	err := a.VerifyOTP(context.Background(), "nobody@x.com", 123456)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestLogin_UnverifiedAlwaysNotVerified(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	_, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)

	// correct password, unverified account
	_, _, err = a.Login(context.Background(), "alice", "password1")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	id, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)
	require.NoError(t, store.MarkVerified(context.Background(), id))

	_, _, err = a.Login(context.Background(), "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = a.Login(context.Background(), "nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResendOTP(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mail := &fakeMailer{}
	a := newTestAuth(store, mail)

	id, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)

	sentBefore := len(mail.sent)

	require.NoError(t, a.ResendOTP(context.Background(), "a@x.com"))
	assert.Len(t, mail.sent, sentBefore+1)

	// unknown and verified emails succeed silently
	require.NoError(t, a.ResendOTP(context.Background(), "nobody@x.com"))
	require.NoError(t, store.MarkVerified(context.Background(), id))
	require.NoError(t, a.ResendOTP(context.Background(), "a@x.com"))
	assert.Len(t, mail.sent, sentBefore+1)
}

func TestFullLifecycle(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	ctx := context.Background()

	id, err := a.Register(ctx, "a@x.com", "alice", "Alice", "pw123pw123")
	require.NoError(t, err)

	code := *store.users[id].OTPCode
	require.NoError(t, a.VerifyOTP(ctx, "a@x.com", code))

	pair, user, err := a.Login(ctx, "alice", "pw123pw123")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, models.RoleUser, user.Role())
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	// refresh is not invalidated by logout; it works until its own expiry
	access, err := a.RefreshAccess(pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestUpdateUserFlags_Partial(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store, &fakeMailer{})

	id, err := a.Register(context.Background(), "a@x.com", "alice", "Alice", "password1")
	require.NoError(t, err)
	require.NoError(t, store.MarkVerified(context.Background(), id))

	staff := true

	u, err := a.UpdateUserFlags(context.Background(), id, nil, &staff)
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsActive) // untouched

	_, err = a.UpdateUserFlags(context.Background(), 9999, nil, &staff)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
