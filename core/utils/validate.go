package utils

import (
	"errors"
	"regexp"
)

var (
	sessionIDRe   = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)
	slugRe        = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	chartHeightRe = regexp.MustCompile(`^[0-9]{1,4}(\.[0-9]{1,2})?(px|rem|em|vh|%)$`)
)

func ValidateSessionID(s string) error {
	if !sessionIDRe.MatchString(s) {
		return errors.New("invalid session id")
	}
	return nil
}

func ValidateSlug(s string) error {
	if len(s) > 64 || !slugRe.MatchString(s) {
		return errors.New("invalid dataset")
	}
	return nil
}

// ValidateChartHeight accepts a plain css length such as 75rem or 600px.
func ValidateChartHeight(s string) error {
	if !chartHeightRe.MatchString(s) {
		return errors.New("invalid chart height")
	}
	return nil
}
