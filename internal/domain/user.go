package domain

import "time"

type Role string

const (
	RoleBasic  Role = "basic"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// IsAtLeastMember reports whether the role carries member privileges.
// Admin implies all member privileges.
func (r Role) IsAtLeastMember() bool {
	return r == RoleMember || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID                 uint      `json:"id"`
	Email              string    `json:"email"`
	Password           string    `json:"-"`
	Name               string    `json:"name"`
	Role               Role      `json:"role"`
	Avatar             string    `json:"avatar"`
	Bio                string    `json:"bio"`
	Faculty            string    `json:"faculty"`
	Year               string    `json:"year"`
	Major              string    `json:"major"`
	LinkedinURL        string    `json:"linkedin_url"`
	Diet               []string  `json:"diet"`
	Interests          []string  `json:"interests"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
