package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidatePageID validates an external platform page identifier.
func ValidatePageID(id string) error {
	if len(id) == 0 {
		return errors.New("page ID cannot be empty")
	}
	if len(id) > 255 {
		return errors.New("page ID exceeds maximum length")
	}
	return nil
}

// ValidateKeyword validates a rule keyword.
func ValidateKeyword(keyword string) error {
	if len(keyword) == 0 {
		return errors.New("keyword cannot be empty")
	}
	if len(keyword) > 255 {
		return errors.New("keyword exceeds maximum length")
	}
	if !utf8.ValidString(keyword) {
		return errors.New("keyword must be valid UTF-8")
	}
	return nil
}

// ValidateReply validates a rule reply body.
func ValidateReply(reply string) error {
	if len(reply) == 0 {
		return errors.New("reply cannot be empty")
	}
	if len(reply) > 10000 {
		return errors.New("reply exceeds maximum length")
	}
	if !utf8.ValidString(reply) {
		return errors.New("reply must be valid UTF-8")
	}
	return nil
}

// ValidateTemperature validates an AI sampling temperature.
func ValidateTemperature(t float64) error {
	if t < 0 || t > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	return nil
}
