// Package validate normalizes and bounds client input. Every function
// returns an *apperr.Error with a user-facing message on rejection.
package validate

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"stockify/internal/apperr"
)

const (
	MobileLength         = 11
	DescriptionMaxLength = 200
	SearchMaxLength      = 50
	DateLayout           = "2006-01-02"
)

var (
	fieldValidator = validator.New()
	stripPolicy    = bluemonday.StrictPolicy()

	whitespace    = regexp.MustCompile(`\s+`)
	mobilePattern = regexp.MustCompile(`^\+?[0-9]+$`)
	searchReject  = regexp.MustCompile(`[^\w\s+,\-.@]`)

	maxAmount = decimal.New(1, 12)
)

// String lower-cases value, collapses runs of whitespace and trims it, then
// bounds its length in runes.
func String(value, title string, min, max int) (string, error) {
	processed := strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(value), " "))
	n := utf8.RuneCountInString(processed)
	if n < min {
		return "", apperr.Validation(fmt.Sprintf("%s must be at least %d characters long", title, min))
	}
	if n > max {
		return "", apperr.Validation(fmt.Sprintf("%s can't be more than %d characters long", title, max))
	}
	return processed, nil
}

func Email(value string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(value))
	if err := fieldValidator.Var(email, "required,email,max=100"); err != nil {
		return "", apperr.Validation("Invalid email address")
	}
	return email, nil
}

func Mobile(value string) (string, error) {
	if len(value) != MobileLength {
		return "", apperr.Validation("Mobile number must be 11 characters")
	}
	if !mobilePattern.MatchString(value) {
		return "", apperr.Validation("Invalid mobile number")
	}
	return value, nil
}

// Password drops all whitespace before bounding the length.
func Password(value string) (string, error) {
	password := whitespace.ReplaceAllString(value, "")
	if n := utf8.RuneCountInString(password); n < 8 || n > 30 {
		return "", apperr.Validation("Password must be at least 8 characters long and not more than 30 characters long")
	}
	return password, nil
}

func EmailOrMobile(value string) (string, error) {
	login := strings.ToLower(whitespace.ReplaceAllString(value, ""))
	if n := utf8.RuneCountInString(login); n < 3 || n > 50 {
		return "", apperr.Validation("Email, or mobile should be valid")
	}
	return login, nil
}

// Amount accepts a positive decimal with at most two fractional digits.
func Amount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() || !amount.Equal(amount.Round(2)) || amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, apperr.Validation("Invalid amount")
	}
	return amount.Round(2), nil
}

const descriptionPasses = 5

// Description strips markup; an empty result is reported as nil. Entities
// are decoded and sanitized again until the text is stable, so encoded tags
// never come back as markup.
func Description(raw string) (*string, error) {
	text, stable := raw, false
	for i := 0; i < descriptionPasses; i++ {
		next := html.UnescapeString(stripPolicy.Sanitize(text))
		if next == text {
			stable = true
			break
		}
		text = next
	}
	if !stable {
		return nil, apperr.Validation("Invalid description")
	}
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(text) > DescriptionMaxLength {
		return nil, apperr.Validation(fmt.Sprintf("Description can't be more than %d characters long", DescriptionMaxLength))
	}
	return &text, nil
}

// SearchTerm keeps word characters, whitespace and + , - . @ only.
func SearchTerm(raw string) string {
	term := searchReject.ReplaceAllString(strings.TrimSpace(raw), "")
	if utf8.RuneCountInString(term) > SearchMaxLength {
		term = string([]rune(term)[:SearchMaxLength])
	}
	return strings.TrimSpace(term)
}

func Date(raw, title string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Validation(title + " is required")
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.Validation("Invalid " + strings.ToLower(title))
}

// ID parses a positive integer path parameter.
func ID(raw, title string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + title + " ID")
	}
	return id, nil
}
