package students

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"internship_portal/internal/models"
	"internship_portal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	apps   map[int64]models.StudentApplication
	nextID int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{apps: make(map[int64]models.StudentApplication), nextID: 1}
}

func (s *fakeStorage) SaveApplication(_ context.Context, app models.StudentApplication) (int64, error) {
	id := s.nextID
	s.nextID++

	app.ID = id
	app.CreatedAt = time.Now()
	s.apps[id] = app

	return id, nil
}

func (s *fakeStorage) ApplicationByID(_ context.Context, id int64) (models.StudentApplication, error) {
	app, ok := s.apps[id]
	if !ok {
		return models.StudentApplication{}, storage.ErrApplicationNotFound
	}

	return app, nil
}

func (s *fakeStorage) Applications(_ context.Context) ([]models.StudentApplication, error) {
	var apps []models.StudentApplication
	for _, app := range s.apps {
		apps = append(apps, app)
	}

	return apps, nil
}

func (s *fakeStorage) UpdateApplicationStatus(_ context.Context, id int64, status string) error {
	app, ok := s.apps[id]
	if !ok {
		return storage.ErrApplicationNotFound
	}

	app.Status = status
	s.apps[id] = app

	return nil
}

type recordingMailer struct {
	sent []models.EmailMessage
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, msg models.EmailMessage) error {
	if m.fail {
		return assert.AnError
	}

	m.sent = append(m.sent, msg)

	return nil
}

func newTestService(store *fakeStorage, mail *recordingMailer) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, store, mail)
}

func testApplication() models.StudentApplication {
	return models.StudentApplication{
		FirstName:   "Bob",
		LastName:    "Singh",
		Email:       "bob@x.com",
		CollegeName: "MNIT",
		Course:      "CSE",
		YearOfStudy: 3,
	}
}

func TestSubmit_PendingAndNotified(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	mail := &recordingMailer{}
	svc := newTestService(store, mail)

	app, err := svc.Submit(context.Background(), testApplication())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, app.Status)
	assert.NotZero(t, app.ID)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "bob@x.com", mail.sent[0].Email)
	assert.Contains(t, mail.sent[0].Message, "MNIT")
}

func TestSubmit_SucceedsWhenEmailFails(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	svc := newTestService(store, &recordingMailer{fail: true})

	_, err := svc.Submit(context.Background(), testApplication())
	assert.NoError(t, err)
	assert.Len(t, store.apps, 1)
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	store := newFakeStorage()
	mail := &recordingMailer{}
	svc := newTestService(store, mail)

	app, err := svc.Submit(context.Background(), testApplication())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), app.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	require.Len(t, mail.sent, 2)
	assert.Contains(t, mail.sent[1].Message, models.StatusAccepted)

	_, err = svc.UpdateStatus(context.Background(), 9999, models.StatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)
}
