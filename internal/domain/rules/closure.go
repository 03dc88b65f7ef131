package rules

import (
	"errors"
	"unicode/utf8"
)

// Custom goodbye messages have a floor so closures stay considered rather
// than perfunctory, and a ceiling to keep them a goodbye, not an essay.
const (
	ClosureMessageMinRunes = 140
	ClosureMessageMaxRunes = 500
)

var (
	ErrClosureMessageTooShort = errors.New("closure message is too short")
	ErrClosureMessageTooLong  = errors.New("closure message is too long")
)

func ValidateClosureMessage(message string) error {
	length := utf8.RuneCountInString(message)
	if length < ClosureMessageMinRunes {
		return ErrClosureMessageTooShort
	}
	if length > ClosureMessageMaxRunes {
		return ErrClosureMessageTooLong
	}
	return nil
}
