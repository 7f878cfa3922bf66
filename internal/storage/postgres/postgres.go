package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"internship_portal/internal/config"
	"internship_portal/internal/models"
	"internship_portal/internal/storage"
	"internship_portal/internal/storage/postgres/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := runMigrations(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

// runMigrations applies embedded goose migrations through a short-lived
// database/sql connection; the pool itself stays on the native pgx protocol.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (r *PostgresRepo) SaveUser(
	ctx context.Context,
	email, username, firstName string,
	passHash []byte,
	otpCode int,
	otpExpiresAt time.Time,
) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, username, first_name, password_hash, otp_code, otp_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, email, username, firstName, string(passHash), otpCode, otpExpiresAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

const userColumns = `
	id, email, username, first_name, password_hash,
	is_verified, is_active, is_staff, is_superuser,
	otp_code, otp_expires_at, created_at
`

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// MarkVerified activates an account and drops its OTP pair in a single
// update, keeping the active-implies-no-code invariant at the storage layer.
func (r *PostgresRepo) MarkVerified(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET is_verified = TRUE, is_active = TRUE, otp_code = NULL, otp_expires_at = NULL
		WHERE id = $1;
	`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

// ResetOTP writes a fresh code and window. Restricted to unverified
// accounts so a re-issue can never reopen a verified one.
func (r *PostgresRepo) ResetOTP(ctx context.Context, userID int64, otpCode int, otpExpiresAt time.Time) error {
	query := `
		UPDATE users
		SET otp_code = $2, otp_expires_at = $3
		WHERE id = $1 AND is_verified = FALSE;
	`

	_, err := r.pool.Exec(ctx, query, userID, otpCode, otpExpiresAt)

	return err
}

// UpdateUserFlags partially updates the two admin-managed flags; nil means
// "leave unchanged".
func (r *PostgresRepo) UpdateUserFlags(ctx context.Context, userID int64, isActive, isStaff *bool) error {
	query := `
		UPDATE users
		SET is_active = COALESCE($2, is_active),
		    is_staff = COALESCE($3, is_staff)
		WHERE id = $1;
	`

	tag, err := r.pool.Exec(ctx, query, userID, isActive, isStaff)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) Users(ctx context.Context) ([]models.User, error) {
	const op = "storage.postgres.Users"

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.User

	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *PostgresRepo) SaveApplication(ctx context.Context, app models.StudentApplication) (int64, error) {
	const op = "storage.postgres.SaveApplication"

	query := `
		INSERT INTO student_applications (first_name, last_name, email, college_name, course, year_of_study, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query,
		app.FirstName, app.LastName, app.Email, app.CollegeName, app.Course, app.YearOfStudy, app.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) ApplicationByID(ctx context.Context, id int64) (models.StudentApplication, error) {
	query := `
		SELECT id, first_name, last_name, email, college_name, course, year_of_study, status, created_at
		FROM student_applications
		WHERE id = $1;
	`

	var app models.StudentApplication

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.FirstName,
		&app.LastName,
		&app.Email,
		&app.CollegeName,
		&app.Course,
		&app.YearOfStudy,
		&app.Status,
		&app.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StudentApplication{}, storage.ErrApplicationNotFound
	}

	return app, err
}

func (r *PostgresRepo) Applications(ctx context.Context) ([]models.StudentApplication, error) {
	const op = "storage.postgres.Applications"

	query := `
		SELECT id, first_name, last_name, email, college_name, course, year_of_study, status, created_at
		FROM student_applications
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var apps []models.StudentApplication

	for rows.Next() {
		var app models.StudentApplication

		err := rows.Scan(
			&app.ID,
			&app.FirstName,
			&app.LastName,
			&app.Email,
			&app.CollegeName,
			&app.Course,
			&app.YearOfStudy,
			&app.Status,
			&app.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		apps = append(apps, app)
	}

	return apps, rows.Err()
}

func (r *PostgresRepo) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE student_applications SET status = $2 WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrApplicationNotFound
	}

	return nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.PassHash,
		&u.IsVerified,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.OTPCode,
		&u.OTPExpiresAt,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

// * dsn формирует конфигурацию базы данных.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
