package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// minAddressSegments is the minimum number of comma-separated segments
// for an address to plausibly carry a "street, city, region" shape.
const minAddressSegments = 3

// ValidationOutcome is the result of syntactic address validation.
// Reason is human-readable and only set when Valid is false.
type ValidationOutcome struct {
	Valid  bool
	Reason string
}

// ValidateAddress performs a cheap syntactic sanity check on a raw
// address before a network call is spent on it. It rejects empty
// strings, addresses with fewer than three comma-separated segments,
// and strings containing neither a digit nor a letter. Pure and
// deterministic; no I/O.
func ValidateAddress(address string) ValidationOutcome {
	if strings.TrimSpace(address) == "" {
		return ValidationOutcome{Reason: "address is empty"}
	}

	segments := 0
	for _, seg := range strings.Split(address, ",") {
		if strings.TrimSpace(seg) != "" {
			segments++
		}
	}
	if segments < minAddressSegments {
		return ValidationOutcome{Reason: fmt.Sprintf(
			"address has %d segment(s), expected at least %d (street, city, region)",
			segments, minAddressSegments,
		)}
	}

	hasDigit := strings.ContainsFunc(address, unicode.IsDigit)
	hasLetter := strings.ContainsFunc(address, unicode.IsLetter)
	if !hasDigit && !hasLetter {
		return ValidationOutcome{Reason: "address contains no digits or letters"}
	}

	return ValidationOutcome{Valid: true}
}
