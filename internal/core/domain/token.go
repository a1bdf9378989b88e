package domain

import "time"

// StravaToken is the access/refresh token pair persisted between runs.
type StravaToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsExpired treats tokens within a minute of expiry as expired so a long
// import run does not start with a credential about to lapse.
func (t *StravaToken) IsExpired(now time.Time) bool {
	return !now.Add(time.Minute).Before(t.ExpiresAt)
}
