package students

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "internship_portal/internal/lib/logger"
	"internship_portal/internal/mailer"
	"internship_portal/internal/models"
	"internship_portal/internal/storage"
)

var ErrNotFound = errors.New("application not found")

type Storage interface {
	SaveApplication(ctx context.Context, app models.StudentApplication) (int64, error)
	ApplicationByID(ctx context.Context, id int64) (models.StudentApplication, error)
	Applications(ctx context.Context) ([]models.StudentApplication, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status string) error
}

// Service manages student application records. Notification emails on
// submission and status change are best-effort and never fail the
// operation.
type Service struct {
	log     *slog.Logger
	storage Storage
	mail    mailer.Sender
}

func New(log *slog.Logger, storage Storage, mail mailer.Sender) *Service {
	return &Service{
		log:     log,
		storage: storage,
		mail:    mail,
	}
}

func (s *Service) Submit(ctx context.Context, app models.StudentApplication) (models.StudentApplication, error) {
	const op = "students.Submit"

	log := s.log.With(slog.String("op", op))

	app.Status = models.StatusPending

	id, err := s.storage.SaveApplication(ctx, app)
	if err != nil {
		log.Error("failed to save application", sl.Err(err))
		return models.StudentApplication{}, fmt.Errorf("%s: %w", op, err)
	}

	app.ID = id

	msg := models.EmailMessage{
		Email:   app.Email,
		Subject: "Internship Application Submitted Successfully",
		Message: fmt.Sprintf(
			"Hi %s,\n\nYour internship application has been successfully submitted.\n\n"+
				"Application Details:\nName: %s %s\nCollege: %s\nCourse: %s\nYear: %d\n\n"+
				"We will review your profile and get back to you soon.\n\nBest regards,\nInternship Team",
			app.FirstName, app.FirstName, app.LastName, app.CollegeName, app.Course, app.YearOfStudy,
		),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		log.Error("failed to send submission email", sl.Err(err))
	}

	log.Info("application submitted", slog.Int64("id", id))

	return app, nil
}

func (s *Service) List(ctx context.Context) ([]models.StudentApplication, error) {
	return s.storage.Applications(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (models.StudentApplication, error) {
	const op = "students.UpdateStatus"

	log := s.log.With(slog.String("op", op))

	if err := s.storage.UpdateApplicationStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrApplicationNotFound) {
			return models.StudentApplication{}, ErrNotFound
		}

		log.Error("failed to update status", sl.Err(err))
		return models.StudentApplication{}, fmt.Errorf("%s: %w", op, err)
	}

	app, err := s.storage.ApplicationByID(ctx, id)
	if err != nil {
		log.Error("failed to reload application", sl.Err(err))
		return models.StudentApplication{}, fmt.Errorf("%s: %w", op, err)
	}

	msg := models.EmailMessage{
		Email:   app.Email,
		Subject: "Application Status Updated",
		Message: fmt.Sprintf(
			"Hi %s,\n\nYour application status has been updated to: %s\n\n"+
				"Please check your dashboard for more details.\n\nBest regards,\nInternship Team",
			app.FirstName, app.Status,
		),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		log.Error("failed to send status email", sl.Err(err))
	}

	log.Info("application status updated", slog.Int64("id", id), slog.String("status", status))

	return app, nil
}
