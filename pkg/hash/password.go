package hash

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	// bcrypt refuses inputs longer than this many bytes.
	maxPasswordBytes = 72
)

// ErrWeakPassword is returned when a password does not meet the acceptance policy.
var ErrWeakPassword = errors.New("the password does not meet the requirement")

// Validate applies the password acceptance policy without hashing.
func Validate(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: must be at most %d bytes", ErrWeakPassword, maxPasswordBytes)
	}

	allDigits, allLetters, anyAlnum := true, true, false
	for _, r := range password {
		isDigit := unicode.IsDigit(r)
		isLetter := unicode.IsLetter(r)
		if !isDigit {
			allDigits = false
		}
		if !isLetter {
			allLetters = false
		}
		if isDigit || isLetter {
			anyAlnum = true
		}
	}

	switch {
	case allDigits:
		return fmt.Errorf("%w: must not be only digits", ErrWeakPassword)
	case allLetters:
		return fmt.Errorf("%w: must not be only letters", ErrWeakPassword)
	case !anyAlnum:
		return fmt.Errorf("%w: must contain a letter or digit", ErrWeakPassword)
	}

	return nil
}

func Hash(password string) (string, error) {
	if err := Validate(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

func Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
