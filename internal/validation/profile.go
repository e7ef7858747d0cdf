package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength     = 30
	MaxLocationLength = 50
	MaxBioLength      = 300
	MaxPostLength     = 2000
)

var allowedGenders = map[string]struct{}{
	"MALE":   {},
	"FEMALE": {},
}

// ValidateName checks a display name is present and short enough.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name should be %d characters max", MaxNameLength)
	}
	return nil
}

// ValidateProfile checks the editable profile fields.
func ValidateProfile(name, location, bio string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if utf8.RuneCountInString(location) > MaxLocationLength {
		return fmt.Errorf("location should be %d characters max", MaxLocationLength)
	}
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio should be %d characters max", MaxBioLength)
	}
	return nil
}

// NormalizeGender upper-cases g and rejects unknown values. Empty is allowed.
func NormalizeGender(g string) (string, error) {
	g = strings.ToUpper(strings.TrimSpace(g))
	if g == "" {
		return "", nil
	}
	if _, ok := allowedGenders[g]; !ok {
		return "", fmt.Errorf("gender must be MALE or FEMALE")
	}
	return g, nil
}

// ValidatePostContent checks post content is non-blank and within bounds.
func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return fmt.Errorf("content cannot exceed %d characters", MaxPostLength)
	}
	return nil
}
