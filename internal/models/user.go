package models

const (
	PlanFree = "free"
	PlanPro  = "pro"

	RoleAdmin = "admin"

	// DefaultGenerationsLimit applies when the identity provider has no limit on record.
	DefaultGenerationsLimit = 50
)

// User is the identity provider's view of a signed-in account. The
// application never writes it; it is read at login and carried in the session.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Plan             string `json:"plan"`
	Role             string `json:"role"`
	GenerationsUsed  int    `json:"aiGenerationsUsed"`
	GenerationsLimit int    `json:"aiGenerationsLimit"`
}

// Limit returns the generation ceiling, falling back to DefaultGenerationsLimit.
func (u User) Limit() int {
	if u.GenerationsLimit <= 0 {
		return DefaultGenerationsLimit
	}
	return u.GenerationsLimit
}

// Remaining returns how many generations are left, never below zero.
func (u User) Remaining() int {
	if left := u.Limit() - u.GenerationsUsed; left > 0 {
		return left
	}
	return 0
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PlanName returns the plan, treating an empty plan as free.
func (u User) PlanName() string {
	if u.Plan == "" {
		return PlanFree
	}
	return u.Plan
}

// Usage is the informational quota summary served by /api/usage.
type Usage struct {
	Plan      string `json:"plan"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}
