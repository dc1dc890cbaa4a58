// Package convert maps domain types to and from the JSON wire format.
package convert

import (
	"fmt"
	"time"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
)

// DateLayout is the wire format of entry dates.
const DateLayout = "2006-01-02"

// --- requests ---

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of PUT /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileUpdateRequest is the body of PUT /users/me.
type ProfileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

// EntryRequest is the body of POST and PUT /calendar.
type EntryRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	EntryDate string `json:"entryDate"`
}

// --- responses ---

// AuthResponse is returned by register and sign-in.
type AuthResponse struct {
	AccessToken string   `json:"accessToken"`
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// AccessTokenResponse is returned by refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// ValidationResponse is returned by GET /auth/validate.
type ValidationResponse struct {
	Valid    bool   `json:"valid"`
	UserID   int64  `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UserResponse is the public profile.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdateResponse is returned by PUT /users/me.
type ProfileUpdateResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// EntryResponse is one journal entry.
type EntryResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	EntryDate string    `json:"entryDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- mapping ---

// ToAuthResponse converts a session to its wire form. The refresh token is
// not part of it; it travels in a cookie.
func ToAuthResponse(s model.Session) AuthResponse {
	return AuthResponse{
		AccessToken: s.Tokens.AccessToken,
		ID:          s.User.ID,
		Username:    s.User.Username,
		Email:       s.User.Email,
		Roles:       nonNil(s.User.Roles),
	}
}

// ToUserResponse converts a user to its public profile.
func ToUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		Roles:     nonNil(u.Roles),
		CreatedAt: u.CreatedAt,
	}
}

// ToEntryResponse converts an entry.
func ToEntryResponse(e model.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		EntryDate: e.EntryDate.Format(DateLayout),
		CreatedAt: e.CreatedAt,
	}
}

// ToEntryResponses converts a list of entries.
func ToEntryResponses(in []model.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(in))
	for _, e := range in {
		out = append(out, ToEntryResponse(e))
	}
	return out
}

// FromEntryRequest parses an entry body. An empty date yields the zero time.
func FromEntryRequest(r EntryRequest) (model.EntryInput, error) {
	in := model.EntryInput{Title: r.Title, Content: r.Content}
	if r.EntryDate == "" {
		return in, nil
	}
	d, err := ParseDate(r.EntryDate)
	if err != nil {
		return model.EntryInput{}, err
	}
	in.EntryDate = d
	return in, nil
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errs.Validation(fmt.Sprintf("entryDate: %q is not a YYYY-MM-DD date", s))
	}
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
