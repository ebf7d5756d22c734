package core

import (
	"strings"
	"testing"

	"pollsapi/internal/config"
)

func TestPollTitle(t *testing.T) {
	v := NewValidator(config.DefaultLimits())

	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"valid", "Favorite programming language", false},
		{"too short", "abc", true},
		{"too long", strings.Repeat("a", 201), true},
		{"no letters", "12345 678", true},
		{"denylisted substring", "Vote for spam here", true},
		{"denylist is case insensitive", "Totally SPAM free", true},
		{"embedded link", "Check https://example.com now", true},
		{"exactly min length", "abcde", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.PollTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PollTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
			if err != nil && err.Field != "title" {
				t.Fatalf("expected field 'title', got %q", err.Field)
			}
		})
	}
}

func TestPollDescription(t *testing.T) {
	v := NewValidator(config.DefaultLimits())

	if err := v.PollDescription(strings.Repeat("d", 1000)); err != nil {
		t.Fatalf("max-length description rejected: %v", err)
	}
	if err := v.PollDescription(strings.Repeat("d", 1001)); err == nil {
		t.Fatal("over-length description accepted")
	}
}

func TestTitleDiffers(t *testing.T) {
	v := NewValidator(config.DefaultLimits())

	if err := v.TitleDiffers("A question", "A question"); err == nil {
		t.Fatal("identical description accepted")
	}
	if err := v.TitleDiffers("A question", "a QUESTION  "); err == nil {
		t.Fatal("case/whitespace variant of the title accepted")
	}
	if err := v.TitleDiffers("A question", ""); err != nil {
		t.Fatalf("empty description rejected: %v", err)
	}
	if err := v.TitleDiffers("A question", "Some context"); err != nil {
		t.Fatalf("distinct description rejected: %v", err)
	}
}

func TestOptionText(t *testing.T) {
	v := NewValidator(config.DefaultLimits())

	if err := v.OptionText(""); err == nil {
		t.Fatal("empty option accepted")
	}
	if err := v.OptionText("   "); err == nil {
		t.Fatal("whitespace-only option accepted")
	}
	if err := v.OptionText(strings.Repeat("x", 101)); err == nil {
		t.Fatal("over-length option accepted")
	}
	if err := v.OptionText("Go"); err != nil {
		t.Fatalf("valid option rejected: %v", err)
	}
}

func TestUsernameAndEmail(t *testing.T) {
	v := NewValidator(config.DefaultLimits())

	if err := v.Username("ab"); err == nil {
		t.Fatal("short username accepted")
	}
	if err := v.Username(strings.Repeat("u", 51)); err == nil {
		t.Fatal("long username accepted")
	}
	if err := v.Username("voter1"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}

	if err := v.Email("not-an-email"); err == nil {
		t.Fatal("invalid email accepted")
	}
	if err := v.Email("voter@example.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
}
