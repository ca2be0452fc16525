package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"stockbook/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone = regexp.MustCompile(`^[0-9+() -]{0,20}$`)

	v = validator.New()
)

// Struct runs the `validate` tags of a request body and reports the first
// failing field as a domain.ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return domain.Invalid(strings.ToLower(fe.Field()), "failed "+fe.Tag()+" check")
	}
	return domain.Invalid("body", err.Error())
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return strings.ToLower(s), reEmail.MatchString(s)
}

// WholeQty parses a quantity typed into a form: positive whole numbers only.
// "2.5", "0", "-1" and "" are all rejected.
func WholeQty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ID validates a simple resource identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Date accepts YYYY-MM-DD; empty means today.
func Date(s string, now time.Time) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format("2006-01-02"), true
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Password enforces length plus one lower, upper, digit and symbol.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
