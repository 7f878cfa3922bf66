package models

import "time"

// User roles, strongest first.
const (
	RoleSuperuser = "superuser"
	RoleStaff     = "staff"
	RoleUser      = "user"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	PassHash     []byte
	IsVerified   bool
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	OTPCode      *int
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
}

// Role derives the authorization tier from the role flags, first match wins.
func (u User) Role() string {
	switch {
	case u.IsSuperuser:
		return RoleSuperuser
	case u.IsStaff:
		return RoleStaff
	default:
		return RoleUser
	}
}

type UserProfile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Profile is the public view of a user. Password hash and OTP state never
// leave the service.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// Student application statuses.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

type StudentApplication struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	CollegeName string    `json:"college_name"`
	Course      string    `json:"course"`
	YearOfStudy int       `json:"year_of_study"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type EmailMessage struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
