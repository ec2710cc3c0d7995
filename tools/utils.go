package tools

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeAddress lowercases and trims a mail address for reliable set
// comparisons.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Slugify converts names like "Salesforce Connector" to "salesforce-connector"
func Slugify(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))

	// Replace spaces and underscores with dashes
	input = strings.ReplaceAll(input, " ", "-")
	input = strings.ReplaceAll(input, "_", "-")

	// Remove all non-alphanumeric or dash characters
	re := regexp.MustCompile(`[^a-z0-9\-]`)
	input = re.ReplaceAllString(input, "")

	// Collapse multiple dashes
	reDash := regexp.MustCompile(`-+`)
	input = reDash.ReplaceAllString(input, "-")

	// Trim leading/trailing dashes
	input = strings.Trim(input, "-")

	return input
}

// TitleCase renders an identifier like "salesforce-connector" as
// "Salesforce Connector".
func TitleCase(input string) string {
	caser := cases.Title(language.English)
	input = strings.ReplaceAll(input, "-", " ")
	input = strings.ReplaceAll(input, "_", " ")
	return caser.String(strings.ToLower(strings.TrimSpace(input)))
}

// MapKeys returns a slice of keys from a map[string]T
func MapKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
