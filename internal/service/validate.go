package service

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/and161185/gratitude-journal/internal/crypto"
	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
)

// Input limits.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 50
	MinPasswordLen = 8
	MaxEmailLen    = 254
	MaxBioLen      = 500
	MaxTitleLen    = 200
	MaxContentLen  = 10000
)

var (
	usernameRules = []validation.Rule{validation.RuneLength(MinUsernameLen, MaxUsernameLen)}
	emailRules    = []validation.Rule{validation.Length(3, MaxEmailLen), is.Email}
	// bcrypt ignores bytes past the limit, so the bound is in bytes.
	passwordRules = []validation.Rule{validation.Required, validation.Length(MinPasswordLen, crypto.MaxPasswordLen)}
)

type registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registration) validate() error {
	return asValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Username, append([]validation.Rule{validation.Required}, usernameRules...)...),
		validation.Field(&r.Email, append([]validation.Rule{validation.Required}, emailRules...)...),
		validation.Field(&r.Password, passwordRules...),
	))
}

func validatePassword(pw string) error {
	return asValidation(validation.Validate(pw, passwordRules...))
}

// validateProfile checks only the fields that are set.
func validateProfile(p model.ProfileUpdate) error {
	return asValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Username, usernameRules...),
		validation.Field(&p.Email, emailRules...),
		validation.Field(&p.Bio, validation.RuneLength(0, MaxBioLen)),
	))
}

type entryFields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func validateEntry(title, content string) error {
	e := entryFields{Title: title, Content: content}
	return asValidation(validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required, validation.RuneLength(1, MaxTitleLen)),
		validation.Field(&e.Content, validation.Required, validation.RuneLength(1, MaxContentLen)),
	))
}

func asValidation(err error) error {
	if err == nil {
		return nil
	}
	return errs.Validation(err.Error())
}
