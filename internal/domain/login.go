package domain

import "regexp"

// LoginKind tells which user column a free-form login string refers to.
type LoginKind int

const (
	LoginUnknown LoginKind = iota
	LoginUsername
	LoginPhone
	LoginEmail
)

func (k LoginKind) String() string {
	switch k {
	case LoginUsername:
		return "username"
	case LoginPhone:
		return "phone_number"
	case LoginEmail:
		return "email"
	default:
		return "unknown"
	}
}

var (
	UsernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,15}$`)
	PhonePattern    = regexp.MustCompile(`^\+?\(?[0-9]{3}\)?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
	EmailPattern    = regexp.MustCompile(`^[^@ \t\r\n]+@[^@ \t\r\n]+\.[^@ \t\r\n]+$`)
)

// ClassifyLogin tries username, then phone, then email. The first match wins.
func ClassifyLogin(s string) LoginKind {
	switch {
	case UsernamePattern.MatchString(s):
		return LoginUsername
	case PhonePattern.MatchString(s):
		return LoginPhone
	case EmailPattern.MatchString(s):
		return LoginEmail
	default:
		return LoginUnknown
	}
}
