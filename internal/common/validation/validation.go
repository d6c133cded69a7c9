package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 2000
	MaxNameLength        = 150
	MaxPasswordLength    = 72

	MinTitleLength    = 3
	MinPasswordLength = 4
)

var (
	accountNumberRegex = regexp.MustCompile(`^[0-9]{10}$`)
	bankCodeRegex      = regexp.MustCompile(`^[0-9A-Za-z]{3,6}$`)
)

// ValidateTitle checks a trimmed giveaway title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		return fmt.Errorf("title must be at least %d characters long", MinTitleLength)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}
	return nil
}

// ValidateDescription allows an empty description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateAccountNumber checks a 10 digit NUBAN.
func ValidateAccountNumber(accountNumber string) error {
	if !accountNumberRegex.MatchString(accountNumber) {
		return fmt.Errorf("account number must be exactly 10 digits")
	}
	return nil
}

func ValidateBankCode(bankCode string) error {
	if !bankCodeRegex.MatchString(bankCode) {
		return fmt.Errorf("invalid bank code")
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidatePassword bounds the entry password of a private giveaway. bcrypt ignores bytes past 72.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password cannot exceed %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidatePositiveInt checks an identifier such as a user id.
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}
