package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/0xsj/overwatch-pkg/log"

	domainerror "github.com/0xsj/overwatch-profile/internal/domain/error"
)

// DefaultUsernamePattern is the character set accepted when no valid
// pattern is configured.
const DefaultUsernamePattern = `[0-9a-zA-Z-_.]+`

// UsernameValidator checks username syntax against a configured pattern.
// A malformed configured pattern must not deny legitimate requests, so
// compilation failures fall back to DefaultUsernamePattern.
type UsernameValidator struct {
	pattern *regexp.Regexp
}

// NewUsernameValidator creates a validator for the given pattern.
func NewUsernameValidator(pattern string, logger log.Logger) *UsernameValidator {
	re, err := compileUsernamePattern(pattern)
	if err != nil {
		logger.Warn("configured username pattern does not compile, using default",
			log.String("pattern", pattern),
			log.String("error", err.Error()),
		)
		re = regexp.MustCompile(fmt.Sprintf("^%s$", DefaultUsernamePattern))
	}
	return &UsernameValidator{pattern: re}
}

// Validate trims the requested username and checks it against the
// pattern. It returns the trimmed username on success.
func (v *UsernameValidator) Validate(requested string) (string, error) {
	username := strings.TrimSpace(requested)
	if username == "" {
		return "", domainerror.ErrMissingField
	}
	if !v.pattern.MatchString(username) {
		return "", domainerror.ErrInvalidUsername
	}
	return username, nil
}

func compileUsernamePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	return regexp.Compile(fmt.Sprintf("^%s$", pattern))
}
