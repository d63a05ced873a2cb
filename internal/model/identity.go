package model

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Identity carries the test-taker's self-reported details. Captured once on
// the identity stage and immutable for the remainder of the flow.
type Identity struct {
	FirstName string `json:"first_name" binding:"required,personname"`
	LastName  string `json:"last_name" binding:"required,personname"`
	Region    string `json:"region" binding:"required,personname"`
}

// namePattern accepts Latin and Cyrillic letters plus the Uzbek Cyrillic
// extensions, apostrophe, hyphen and space. Length bounds are checked
// separately so the error messages can distinguish the two failures.
var namePattern = regexp.MustCompile(`^[A-Za-zА-Яа-яЁёЎўҚқҒғҲҳ'\- ]+$`)

const (
	nameMinLen = 2
	nameMaxLen = 50
)

// ValidName reports whether a single identity field is acceptable.
func ValidName(v string) bool {
	v = strings.TrimSpace(v)
	n := utf8.RuneCountInString(v)
	if n < nameMinLen || n > nameMaxLen {
		return false
	}
	return namePattern.MatchString(v)
}

// Validate checks every field and returns a field-name → message map,
// or nil when the identity is acceptable.
func (i *Identity) Validate() map[string]string {
	fields := make(map[string]string)
	check := func(name, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			fields[name] = "field is required"
			return
		}
		if n := utf8.RuneCountInString(value); n < nameMinLen || n > nameMaxLen {
			fields[name] = "must be between 2 and 50 characters"
			return
		}
		if !namePattern.MatchString(value) {
			fields[name] = "only letters, apostrophe, hyphen and space are allowed"
		}
	}
	check("first_name", i.FirstName)
	check("last_name", i.LastName)
	check("region", i.Region)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
