package homepage_test

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	homepage "github.com/goliatone/go-homepage"
	"github.com/stretchr/testify/assert"
)

func TestUsernameRules(t *testing.T) {
	valid := []string{"a", "alice", "Alice_99", strings.Repeat("x", 64)}
	for _, name := range valid {
		assert.NoError(t, validation.Validate(name, homepage.UsernameRules()...), "name: %q", name)
	}

	invalid := []string{"", "has space", "ünïcode", "dash-ed", strings.Repeat("x", 65)}
	for _, name := range invalid {
		assert.Error(t, validation.Validate(name, homepage.UsernameRules()...), "name: %q", name)
	}
}

func TestPasswordRules(t *testing.T) {
	valid := []string{"password", "p4ss w0rd!", strings.Repeat("x", 64)}
	for _, pw := range valid {
		assert.NoError(t, validation.Validate(pw, homepage.PasswordRules()...), "password: %q", pw)
	}

	invalid := []string{"", "short", "tab\tchar", "new\nline", strings.Repeat("x", 65)}
	for _, pw := range invalid {
		assert.Error(t, validation.Validate(pw, homepage.PasswordRules()...), "password: %q", pw)
	}
}

func TestShortCodeRules(t *testing.T) {
	valid := []string{"ab", "my-link_2", strings.Repeat("x", 30)}
	for _, code := range valid {
		assert.NoError(t, validation.Validate(code, homepage.ShortCodeRules()...), "code: %q", code)
	}

	invalid := []string{"", "a", "has space", "slash/ed", strings.Repeat("x", 31)}
	for _, code := range invalid {
		assert.Error(t, validation.Validate(code, homepage.ShortCodeRules()...), "code: %q", code)
	}
}

func TestValidateTargetURL(t *testing.T) {
	valid := []string{"http://example.com", "https://example.com/path?q=1"}
	for _, u := range valid {
		assert.NoError(t, homepage.ValidateTargetURL(u), "url: %q", u)
	}

	invalid := []string{"ftp://example.com", "javascript:alert(1)", "//no-scheme", "not a url at all%"}
	for _, u := range invalid {
		assert.Error(t, homepage.ValidateTargetURL(u), "url: %q", u)
	}
}
