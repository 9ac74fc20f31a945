package usecase

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FollowupNoteMaxLength  = 500
	DefaultFollowupMaxDays = 60
)

var followupTimeLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05"}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FollowupRules parametriza a janela de agendamento.
type FollowupRules struct {
	MaxDays  int
	Location *time.Location
}

func (r FollowupRules) maxWindow() time.Duration {
	days := r.MaxDays
	if days <= 0 {
		days = DefaultFollowupMaxDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (r FollowupRules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// ValidateFollowupInput interpreta data e hora no fuso do usuário e aplica as
// regras de agendamento em relação a now. Retorna o instante em UTC.
func ValidateFollowupInput(input FollowupInput, now time.Time, rules FollowupRules) (time.Time, []ValidationError) {
	var errors []ValidationError

	date := strings.TrimSpace(input.Date)
	clock := strings.TrimSpace(input.Time)

	if date == "" {
		errors = append(errors, ValidationError{"date", "is required"})
	}
	if clock == "" {
		errors = append(errors, ValidationError{"time", "is required"})
	}

	if err := ValidateFollowupNote(input.Note); err != nil {
		errors = append(errors, *err)
	}

	if date == "" || clock == "" {
		return time.Time{}, errors
	}

	at, ok := parseFollowupTime(date, clock, rules.location())
	if !ok {
		errors = append(errors, ValidationError{"date", "must be a valid date (YYYY-MM-DD) and time (HH:MM)"})
		return time.Time{}, errors
	}

	if !at.After(now) {
		errors = append(errors, ValidationError{"date", "must be in the future"})
	} else if at.Sub(now) > rules.maxWindow() {
		errors = append(errors, ValidationError{"date", fmt.Sprintf("must be within %d days", int(rules.maxWindow().Hours()/24))})
	}

	return at.UTC(), errors
}

// ValidateFollowupNote é a checagem de entrada usada também pelo formulário.
func ValidateFollowupNote(note string) *ValidationError {
	if utf8.RuneCountInString(note) > FollowupNoteMaxLength {
		return &ValidationError{"note", fmt.Sprintf("must not exceed %d characters", FollowupNoteMaxLength)}
	}
	return nil
}

func NoteRemaining(note string) int {
	return FollowupNoteMaxLength - utf8.RuneCountInString(note)
}

func parseFollowupTime(date, clock string, loc *time.Location) (time.Time, bool) {
	raw := date + " " + clock
	for _, layout := range followupTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
