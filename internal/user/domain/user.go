// Package domain defines the core user domain entities and types.
package domain

import (
	"time"
)

// Role is the capability tag attached to every user. Authorization decisions
// branch on exact string match; there is no role hierarchy.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// FieldCipher is the subset of the PII cipher the entities need to keep
// plaintext out of their persisted fields. Satisfied by
// crypto/service.FieldCipher.
type FieldCipher interface {
	EncryptString(plaintext string) ([]byte, error)
	DecryptString(ciphertext []byte) (string, error)
	EmailIndex(email string) string
}

// User represents an identity record. The email is held only in encrypted
// form plus a keyed blind index used for equality lookup; the password is
// held only as an Argon2id verifier. Plaintext never leaves the accessors.
type User struct {
	ID             int64
	EmailEncrypted []byte
	EmailIndex     string
	PasswordHash   string
	Role           Role
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetEmail encrypts the email and recomputes the blind index. Both fields
// are always updated together so the index can never point at stale
// ciphertext.
func (u *User) SetEmail(cipher FieldCipher, email string) error {
	encrypted, err := cipher.EncryptString(email)
	if err != nil {
		return err
	}
	u.EmailEncrypted = encrypted
	u.EmailIndex = cipher.EmailIndex(email)
	return nil
}

// Email decrypts and returns the user's email address.
func (u *User) Email(cipher FieldCipher) (string, error) {
	return cipher.DecryptString(u.EmailEncrypted)
}

// Profile holds the optional PII fields of a user. Each field is encrypted
// independently; a nil ciphertext means the value was never set, not that an
// empty string was encrypted.
type Profile struct {
	ID                 int64
	UserID             int64
	FirstNameEncrypted []byte
	LastNameEncrypted  []byte
	PhoneEncrypted     []byte
	Bio                string
	CreatedAt          time.Time
}

// SetFirstName encrypts and stores the first name. Empty input leaves the
// field absent.
func (p *Profile) SetFirstName(cipher FieldCipher, firstName string) error {
	return setOptional(cipher, &p.FirstNameEncrypted, firstName)
}

// FirstName decrypts and returns the first name, or "" when absent.
func (p *Profile) FirstName(cipher FieldCipher) (string, error) {
	return getOptional(cipher, p.FirstNameEncrypted)
}

// SetLastName encrypts and stores the last name. Empty input leaves the
// field absent.
func (p *Profile) SetLastName(cipher FieldCipher, lastName string) error {
	return setOptional(cipher, &p.LastNameEncrypted, lastName)
}

// LastName decrypts and returns the last name, or "" when absent.
func (p *Profile) LastName(cipher FieldCipher) (string, error) {
	return getOptional(cipher, p.LastNameEncrypted)
}

// SetPhone encrypts and stores the phone number. Empty input leaves the
// field absent.
func (p *Profile) SetPhone(cipher FieldCipher, phone string) error {
	return setOptional(cipher, &p.PhoneEncrypted, phone)
}

// Phone decrypts and returns the phone number, or "" when absent.
func (p *Profile) Phone(cipher FieldCipher) (string, error) {
	return getOptional(cipher, p.PhoneEncrypted)
}

// HasData reports whether any profile field carries a value.
func (p *Profile) HasData() bool {
	return p.FirstNameEncrypted != nil || p.LastNameEncrypted != nil ||
		p.PhoneEncrypted != nil || p.Bio != ""
}

// setOptional encrypts a value into dst, short-circuiting on empty input so
// absence is represented as nil ciphertext rather than an encrypted empty
// string.
func setOptional(cipher FieldCipher, dst *[]byte, value string) error {
	if value == "" {
		return nil
	}
	encrypted, err := cipher.EncryptString(value)
	if err != nil {
		return err
	}
	*dst = encrypted
	return nil
}

// getOptional decrypts a value, short-circuiting on absence without invoking
// the cipher.
func getOptional(cipher FieldCipher, ciphertext []byte) (string, error) {
	if ciphertext == nil {
		return "", nil
	}
	return cipher.DecryptString(ciphertext)
}
