package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// Named patterns for rule-based validation. Setting one of these as a Rule
// Pattern together with the matching PatternName produces the right message.
var (
	UsernamePattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	EmailPattern        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	NamePattern         = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\s'-]*$`)
	AgePattern          = regexp.MustCompile(`^\d{1,3}$`)
	GithubHandlePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:-?[a-zA-Z0-9]){0,38}$`)
	URLPattern          = regexp.MustCompile(`^https?://[^\s]+$`)
)

// usernameCharset restricts usernames to lowercase letters, digits, hyphens,
// and underscores.
var usernameCharset = regexp.MustCompile(`^[a-z0-9_-]+$`)

// fullNameCharset restricts names to letters, spaces, hyphens, and
// apostrophes.
var fullNameCharset = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)

// codingLanguageTag matches the shape of a language selection such as
// "Go", "C++", "C#", "Objective-C", or ".NET".
var codingLanguageTag = regexp.MustCompile(`(?i)^[a-z0-9.][a-z0-9+#. -]{0,29}$`)

// ReservedUsernames cannot be claimed through onboarding or profile updates.
var ReservedUsernames = []string{
	"admin", "administrator", "root", "system", "support", "help",
	"api", "moderator", "mod", "staff", "official", "www", "mail",
	"test", "demo", "null", "undefined", "anonymous", "user", "devrecruit",
}

// IsReservedUsername reports whether the username is on the reserved list.
// The comparison is case insensitive.
func IsReservedUsername(username string) bool {
	lower := strings.ToLower(username)
	for _, r := range ReservedUsernames {
		if lower == r {
			return true
		}
	}
	return false
}

// ValidateUsername checks a username against the platform rules: 3-22
// characters, lowercase letters, digits, hyphens, and underscores, starting
// with a letter or digit, not ending in a hyphen or underscore, and not on
// the reserved list.
func ValidateUsername(username string) Result {
	trimmed := strings.TrimSpace(username)
	result := Result{SanitizedValue: trimmed}

	if trimmed == "" {
		result.Errors = append(result.Errors, "Username is required")
		return result
	}

	length := len([]rune(trimmed))
	if length < constants.MinUsernameLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Username must be at least %d characters", constants.MinUsernameLength))
	}
	if length > constants.MaxUsernameLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Username must be at most %d characters", constants.MaxUsernameLength))
	}

	if !usernameCharset.MatchString(trimmed) {
		result.Errors = append(result.Errors,
			"Username may only contain lowercase letters, numbers, hyphens, and underscores")
	} else {
		first := trimmed[0]
		if first == '-' || first == '_' {
			result.Errors = append(result.Errors, "Username must start with a letter or number")
		}
		last := trimmed[len(trimmed)-1]
		if last == '-' || last == '_' {
			result.Errors = append(result.Errors, "Username must not end with a hyphen or underscore")
		}
	}

	if IsReservedUsername(trimmed) {
		result.Errors = append(result.Errors, "This username is reserved and cannot be used")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateFullName requires a first and last name using letters, spaces,
// hyphens, and apostrophes only. Every name part must carry at least two
// letters, not counting hyphens or apostrophes.
func ValidateFullName(name string) Result {
	trimmed := strings.TrimSpace(name)
	result := Result{SanitizedValue: trimmed}

	if trimmed == "" {
		result.Errors = append(result.Errors, "Full name is required")
		return result
	}

	if len([]rune(trimmed)) > constants.MaxFullNameLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Full name must be at most %d characters", constants.MaxFullNameLength))
	}

	if !fullNameCharset.MatchString(trimmed) {
		result.Errors = append(result.Errors,
			"Full name may only contain letters, spaces, hyphens, and apostrophes")
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) < 2 {
		result.Errors = append(result.Errors, "Please enter your first and last name")
	} else {
		for _, tok := range tokens {
			if letterCount(tok) < 2 {
				result.Errors = append(result.Errors,
					"Each part of your name must be at least 2 letters")
				break
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// FormatFullName normalizes name capitalization: the input is lowercased and
// the first letter of each word is raised.
func FormatFullName(name string) string {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	for i, tok := range tokens {
		runes := []rune(tok)
		runes[0] = unicode.ToUpper(runes[0])
		tokens[i] = string(runes)
	}
	return strings.Join(tokens, " ")
}

// ValidateAge accepts ages between 13 and 120 inclusive. Thirteen is the
// platform's minimum-age policy.
func ValidateAge(age int) Result {
	result := Result{SanitizedValue: strconv.Itoa(age)}

	switch {
	case age < constants.MinAge:
		result.Errors = append(result.Errors,
			fmt.Sprintf("You must be at least %d years old to use DevRecruit", constants.MinAge))
	case age > constants.MaxAge:
		result.Errors = append(result.Errors, "Please enter a valid age")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateAboutMe treats empty input as valid. Present input must be 10-500
// characters of real text: all-one-character filler and text without any
// letters are rejected.
func ValidateAboutMe(about string) Result {
	trimmed := strings.TrimSpace(about)
	result := Result{SanitizedValue: trimmed}

	if trimmed == "" {
		result.IsValid = true
		return result
	}

	length := len([]rune(trimmed))
	if length < constants.MinAboutMeLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("About me must be at least %d characters", constants.MinAboutMeLength))
	}
	if length > constants.MaxAboutMeLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("About me must be at most %d characters", constants.MaxAboutMeLength))
	}

	if isRepeatedRune(trimmed) || !containsLetter(trimmed) {
		result.Errors = append(result.Errors,
			"Please write a short description in your own words")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateEducationStatus accepts one of the onboarding education options.
func ValidateEducationStatus(status string) Result {
	result := Result{SanitizedValue: status}

	switch status {
	case constants.EducationHighschool, constants.EducationCollege,
		constants.EducationProfessional, constants.EducationNotInSchool:
		result.IsValid = true
	default:
		result.Errors = append(result.Errors, "Please select a valid education status")
	}

	return result
}

// ValidateCodingLanguages checks the onboarding language selection: between
// 1 and 15 entries, each shaped like a real language tag.
func ValidateCodingLanguages(languages []string) Result {
	result := Result{}

	if len(languages) < constants.MinCodingLangs {
		result.Errors = append(result.Errors, "Select at least one coding language")
	}
	if len(languages) > constants.MaxCodingLangs {
		result.Errors = append(result.Errors,
			fmt.Sprintf("You can select at most %d coding languages", constants.MaxCodingLangs))
	}

	for _, lang := range languages {
		if !codingLanguageTag.MatchString(strings.TrimSpace(lang)) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%q is not a valid language selection", lang))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// letterCount returns how many letters s contains, ignoring hyphens,
// apostrophes, and any other non-letter characters.
func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// isRepeatedRune reports whether s consists of one character repeated.
func isRepeatedRune(s string) bool {
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
			continue
		}
		if r != first {
			return false
		}
	}
	return true
}

// containsLetter reports whether s contains at least one letter.
func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
