package core

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"pollsapi/internal/config"
)

// Validator applies field-level rules using the injected limits.
type Validator struct {
	limits config.Limits
}

func NewValidator(limits config.Limits) Validator {
	return Validator{limits: limits}
}

func (v Validator) PollTitle(title string) *Error {
	title = strings.TrimSpace(title)
	if len(title) < v.limits.MinTitleLen {
		return Invalid("title", fmt.Sprintf("must be at least %d characters", v.limits.MinTitleLen))
	}
	if len(title) > v.limits.MaxTitleLen {
		return Invalid("title", fmt.Sprintf("must be at most %d characters", v.limits.MaxTitleLen))
	}
	if !containsLetter(title) {
		return Invalid("title", "must contain at least one letter")
	}
	lower := strings.ToLower(title)
	for _, banned := range v.limits.TitleDenylist {
		if strings.Contains(lower, banned) {
			return Invalid("title", fmt.Sprintf("may not contain %q", banned))
		}
	}
	return nil
}

func (v Validator) PollDescription(description string) *Error {
	if len(description) > v.limits.MaxDescriptionLen {
		return Invalid("description", fmt.Sprintf("must be at most %d characters", v.limits.MaxDescriptionLen))
	}
	return nil
}

// TitleDiffers rejects polls whose description merely repeats the title.
func (v Validator) TitleDiffers(title, description string) *Error {
	if description == "" {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(title), strings.TrimSpace(description)) {
		return Invalid("description", "must differ from the title")
	}
	return nil
}

func (v Validator) OptionText(text string) *Error {
	text = strings.TrimSpace(text)
	if text == "" {
		return Invalid("text", "is required")
	}
	if len(text) > v.limits.MaxOptionTextLen {
		return Invalid("text", fmt.Sprintf("must be at most %d characters", v.limits.MaxOptionTextLen))
	}
	return nil
}

func (v Validator) Username(username string) *Error {
	if len(username) < v.limits.MinUsernameLen {
		return Invalid("username", fmt.Sprintf("must be at least %d characters", v.limits.MinUsernameLen))
	}
	if len(username) > v.limits.MaxUsernameLen {
		return Invalid("username", fmt.Sprintf("must be at most %d characters", v.limits.MaxUsernameLen))
	}
	return nil
}

func (v Validator) Email(email string) *Error {
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalid("email", "must be a valid email address")
	}
	return nil
}

func (v Validator) FullName(name string) *Error {
	if len(name) > v.limits.MaxFullNameLen {
		return Invalid("full_name", fmt.Sprintf("must be at most %d characters", v.limits.MaxFullNameLen))
	}
	return nil
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
