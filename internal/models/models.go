package models

import "time"

type User struct {
	ID              int64
	Email           string
	Nickname        string
	PassHash        []byte
	EmailVerified   bool
	Bio             *string
	ProfileImageURL *string
	PhoneNumber     *string
	PhoneVerified   bool
}

// UserPatch describes a partial update of a user row; nil fields are left
// untouched.
type UserPatch struct {
	Nickname        *string
	Bio             *string
	ProfileImageURL *string
	PhoneNumber     *string
	EmailVerified   *bool
	PhoneVerified   *bool
}

func (p UserPatch) IsEmpty() bool {
	return p.Nickname == nil &&
		p.Bio == nil &&
		p.ProfileImageURL == nil &&
		p.PhoneNumber == nil &&
		p.EmailVerified == nil &&
		p.PhoneVerified == nil
}

// VerificationCode is the single outstanding confirmation code for an email
// address. Email is the unique key: re-sending overwrites the row.
type VerificationCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// EmailMessage is the job published to the mail queue and consumed by the
// sender worker.
type EmailMessage struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
