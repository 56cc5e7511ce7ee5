// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package langmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// MaxLanguageCodeLength is the longest language code accepted.
const MaxLanguageCodeLength = 35

var languageCodePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z]{2,4})?(-[a-zA-Z]{2})?(-[a-zA-Z0-9#]+)?$`)

// Language code validation errors.
var (
	ErrEmptyCode   = errors.New("language code is empty")
	ErrCodeTooLong = fmt.Errorf("language code exceeds %d characters", MaxLanguageCodeLength)
	ErrCodeFormat  = errors.New("language code has an invalid format")
)

// ValidationResult is the outcome of ValidateMappings.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateMappings checks a JSON mapping list and reports every problem
// found, numbering entries from 1. An empty string is an empty list.
func ValidateMappings(mappingsJSON string) ValidationResult {
	errs := []string{}
	if strings.TrimSpace(mappingsJSON) == "" {
		mappingsJSON = "[]"
	}

	var raw any
	if err := json.Unmarshal([]byte(mappingsJSON), &raw); err != nil {
		return ValidationResult{Errors: append(errs, "Invalid JSON format")}
	}

	list, ok := raw.([]any)
	if !ok {
		return ValidationResult{Errors: append(errs, "Mappings must be an array")}
	}

	directusCodes := make(map[string]bool)
	localazyCodes := make(map[string]bool)
	for i, item := range list {
		entry, _ := item.(map[string]any)
		errs = checkCode(errs, i+1, "Directus", entry["directusCode"], directusCodes)
		errs = checkCode(errs, i+1, "Localazy", entry["localazyCode"], localazyCodes)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func checkCode(errs []string, n int, side string, v any, seen map[string]bool) []string {
	code, ok := v.(string)
	switch {
	case !ok:
		return append(errs, fmt.Sprintf("Mapping %d: Missing or invalid %s code", n, side))
	case strings.TrimSpace(code) == "":
		return append(errs, fmt.Sprintf("Mapping %d: %s code cannot be empty", n, side))
	case seen[code]:
		return append(errs, fmt.Sprintf("Mapping %d: Duplicate %s code %q", n, side, code))
	}
	seen[code] = true
	return errs
}

// ValidateLanguageCode checks that code looks like a BCP 47 tag, optionally
// carrying a Localazy script suffix after '#'.
func ValidateLanguageCode(code string) error {
	if code == "" {
		return ErrEmptyCode
	}
	if len(code) > MaxLanguageCodeLength {
		return ErrCodeTooLong
	}
	if !languageCodePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrCodeFormat, code)
	}
	tag, _, _ := strings.Cut(code, "#")
	if _, err := language.Parse(strings.TrimSuffix(tag, "-")); err != nil {
		// Well-formed but unregistered subtags are accepted.
		var unknown language.ValueError
		if !errors.As(err, &unknown) {
			return fmt.Errorf("%w: %q: %v", ErrCodeFormat, code, err)
		}
	}
	return nil
}
