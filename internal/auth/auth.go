package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"internship_portal/internal/lib/jwt"
	sl "internship_portal/internal/lib/logger"
	"internship_portal/internal/lib/otp"
	"internship_portal/internal/mailer"
	"internship_portal/internal/models"
	"internship_portal/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
)

// Auth drives the account state machine: unverified registration, OTP
// verification, login with a stateless token pair, access refresh and the
// admin-only flag updates.
type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	mail        mailer.Sender
	tokens      *jwt.Issuer
	otpTTL      time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, email, username, firstName string, passHash []byte, otpCode int, otpExpiresAt time.Time) (int64, error)
	MarkVerified(ctx context.Context, userID int64) error
	ResetOTP(ctx context.Context, userID int64, otpCode int, otpExpiresAt time.Time) error
	UpdateUserFlags(ctx context.Context, userID int64, isActive, isStaff *bool) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	Users(ctx context.Context) ([]models.User, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	mail mailer.Sender,
	tokens *jwt.Issuer,
	otpTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		mail:        mail,
		tokens:      tokens,
		otpTTL:      otpTTL,
	}
}

// Register creates an unverified account with a fresh OTP and emails the
// code. Delivery is best-effort: registration succeeds even if the email
// never leaves.
func (a *Auth) Register(
	ctx context.Context,
	email, username, firstName, pass string,
) (int64, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := hashPassword(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	code, err := otp.Generate()
	if err != nil {
		log.Error("failed to generate otp", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := time.Now().Add(a.otpTTL)

	id, err := a.usrSaver.SaveUser(ctx, email, username, firstName, passHash, code, expiresAt)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already registered")
			return 0, ErrEmailTaken
		}

		log.Error("failed to save user", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	a.sendOTPEmail(ctx, log, email, code)

	log.Info("user registered", slog.Int64("uid", id))

	return id, nil
}

// VerifyOTP transitions an account to verified+active and clears the OTP
// pair. An unknown email reports the same ErrInvalidOTP as a wrong code so
// the endpoint cannot be used to enumerate registered addresses.
func (a *Auth) VerifyOTP(ctx context.Context, email string, code int) error {
	const op = "auth.VerifyOTP"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("otp verification for unknown email")
			return ErrInvalidOTP
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := otp.Validate(user.OTPCode, user.OTPExpiresAt, code, time.Now()); err != nil {
		if errors.Is(err, otp.ErrExpired) {
			return ErrOTPExpired
		}

		return ErrInvalidOTP
	}

	otp.Clear(&user)

	if err := a.usrSaver.MarkVerified(ctx, user.ID); err != nil {
		log.Error("failed to mark user verified", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user verified", slog.Int64("uid", user.ID))

	return nil
}

// ResendOTP issues a fresh code for an unverified account. It reports
// success for unknown and already-verified emails alike.
func (a *Auth) ResendOTP(ctx context.Context, email string) error {
	const op = "auth.ResendOTP"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.IsVerified {
		return nil
	}

	code, err := otp.Generate()
	if err != nil {
		log.Error("failed to generate otp", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.ResetOTP(ctx, user.ID, code, time.Now().Add(a.otpTTL)); err != nil {
		log.Error("failed to reset otp", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.sendOTPEmail(ctx, log, email, code)

	log.Info("otp reissued", slog.Int64("uid", user.ID))

	return nil
}

// Login checks credentials against an active account and mints a token
// pair. An existing but not yet activated account always reports
// ErrNotVerified, never ErrInvalidCredentials.
func (a *Auth) Login(
	ctx context.Context,
	username, password string,
) (jwt.Pair, models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return jwt.Pair{}, models.User{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return jwt.Pair{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return jwt.Pair{}, models.User{}, ErrNotVerified
	}

	if !verifyPassword(user, password) {
		log.Info("invalid credentials")
		return jwt.Pair{}, models.User{}, ErrInvalidCredentials
	}

	pair, err := a.tokens.NewPair(user)
	if err != nil {
		log.Error("failed to issue token pair", sl.Err(err))
		return jwt.Pair{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return pair, user, nil
}

// RefreshAccess validates a refresh token and returns a new access token.
// The refresh token stays as issued.
func (a *Auth) RefreshAccess(refreshToken string) (string, error) {
	const op = "auth.RefreshAccess"

	access, err := a.tokens.RefreshAccess(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) {
			a.log.Warn("invalid refresh token", slog.String("op", op))
			return "", jwt.ErrInvalidToken
		}

		a.log.Error("failed to refresh access token", slog.String("op", op), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return access, nil
}

func (a *Auth) AccessTTL() time.Duration {
	return a.tokens.AccessTTL()
}

func (a *Auth) RefreshTTL() time.Duration {
	return a.tokens.RefreshTTL()
}

func (a *Auth) UserByID(ctx context.Context, id int64) (models.User, error) {
	return a.usrProvider.UserByID(ctx, id)
}

func (a *Auth) Users(ctx context.Context) ([]models.User, error) {
	return a.usrProvider.Users(ctx)
}

// UpdateUserFlags applies a partial admin update of is_active / is_staff
// and returns the updated record. No other fields are reachable through
// this path.
func (a *Auth) UpdateUserFlags(ctx context.Context, userID int64, isActive, isStaff *bool) (models.User, error) {
	const op = "auth.UpdateUserFlags"

	if err := a.usrSaver.UpdateUserFlags(ctx, userID, isActive, isStaff); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, storage.ErrUserNotFound
		}

		a.log.Error("failed to update user flags", slog.String("op", op), sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return a.usrProvider.UserByID(ctx, userID)
}

func (a *Auth) sendOTPEmail(ctx context.Context, log *slog.Logger, email string, code int) {
	msg := models.EmailMessage{
		Email:   email,
		Subject: "Verify your account",
		Message: fmt.Sprintf("Your OTP is: %d. It expires in %d minutes.", code, int(a.otpTTL.Minutes())),
	}

	if err := a.mail.Send(ctx, msg); err != nil {
		log.Error("failed to send otp email", sl.Err(err))
	}
}
