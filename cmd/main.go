package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"internship_portal/internal/auth"
	"internship_portal/internal/captcha"
	"internship_portal/internal/config"
	"internship_portal/internal/http_server/handlers/adminusers"
	"internship_portal/internal/http_server/handlers/applications"
	"internship_portal/internal/http_server/handlers/login"
	"internship_portal/internal/http_server/handlers/logout"
	"internship_portal/internal/http_server/handlers/me"
	"internship_portal/internal/http_server/handlers/refresh"
	register "internship_portal/internal/http_server/handlers/register"
	"internship_portal/internal/http_server/handlers/resendotp"
	"internship_portal/internal/http_server/handlers/verifyotp"
	"internship_portal/internal/http_server/middleware/authn"
	"internship_portal/internal/lib/jwt"
	"internship_portal/internal/mailer"
	rateLimit "internship_portal/internal/middleware/ratelimit"
	"internship_portal/internal/rabbitmq"
	"internship_portal/internal/storage/postgres"
	"internship_portal/internal/students"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting internship portal service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	mailSender, closeMail, err := setupMailer(cfg)
	if err != nil {
		log.Error("failed to set up mail transport", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeMail()

	tokens := jwt.NewIssuer(cfg.Tokens.Secret, cfg.Tokens.AccessTokenTTL, cfg.Tokens.RefreshTokenTTL)

	captchaVerifier := captcha.NewClient(log, cfg.Captcha.VerifyURL, cfg.Captcha.Secret, cfg.Captcha.Timeout)

	authService := auth.New(log, storage, storage, mailSender, tokens, cfg.OTP.TTL)
	studentService := students.New(log, storage, mailSender)

	router := setupRouter(log, authService, studentService, captchaVerifier, tokens)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	studentService *students.Service,
	captchaVerifier *captcha.Client,
	tokens *jwt.Issuer,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/register",
			register.New(log, validate, authService, captchaVerifier),
		)
		r.With(rateLimit.VerifyOTP()).Post("/verify-otp",
			verifyotp.New(log, validate, authService),
		)
		r.With(rateLimit.ResendOTP()).Post("/resend-otp",
			resendotp.New(log, validate, authService),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService, captchaVerifier),
		)
		r.With(rateLimit.Refresh()).Post("/refresh",
			refresh.New(log, authService),
		)

		r.Group(func(r chi.Router) {
			r.Use(authn.New(log, tokens))

			r.With(rateLimit.Logout()).Post("/logout", logout.New(log))
			r.Get("/me", me.New(log, authService))

			r.Route("/admin/users", func(r chi.Router) {
				r.Use(authn.RequireAdmin)

				r.Get("/", adminusers.List(log, authService))
				r.Patch("/{id}", adminusers.Update(log, validate, authService))
			})
		})
	})

	r.Route("/students", func(r chi.Router) {
		r.Post("/", applications.Submit(log, validate, studentService))

		r.Group(func(r chi.Router) {
			r.Use(authn.New(log, tokens))
			r.Use(authn.RequireAdmin)

			r.Get("/", applications.List(log, studentService))
			r.Put("/{id}/status", applications.UpdateStatus(log, validate, studentService))
		})
	})

	return r
}

// setupMailer picks the delivery transport: direct HTTP relay or a durable
// queue for the mail sender worker.
func setupMailer(cfg *config.Config) (mailer.Sender, func(), error) {
	if cfg.Email.Transport == "amqp" {
		pub, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			return nil, nil, err
		}

		return pub, pub.Close, nil
	}

	relay := mailer.NewHTTPRelay(cfg.Email.RelayURL, cfg.Email.Secret, cfg.Email.Timeout)

	return relay, func() {}, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
