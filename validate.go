package homepage

import (
	"errors"
	"net/url"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	usernameRe  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	passwordRe  = regexp.MustCompile(`^[\x20-\x7e]+$`)
	shortCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// UsernameRules validate a username: 1-64 bytes, ASCII alphanumeric or
// underscore. Applied before any store call.
func UsernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, 64),
		validation.Match(usernameRe),
	}
}

// PasswordRules validate a password: 8-64 bytes of printable ASCII.
func PasswordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(8, 64),
		validation.Match(passwordRe),
	}
}

// ShortCodeRules validate a caller-chosen short code: 2-30 bytes from
// [A-Za-z0-9_-].
func ShortCodeRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(2, 30),
		validation.Match(shortCodeRe),
	}
}

// ValidateTargetURL accepts only absolute http/https URLs.
func ValidateTargetURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL scheme must be http or https")
	}
	return nil
}
