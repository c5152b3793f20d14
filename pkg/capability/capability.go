// Package capability negotiates which outcome-data fields a tool
// consumer accepts. The consumer advertises a comma-joined token
// list as a launch extension parameter; the provider parses it
// and answers per-field support questions.
package capability

import "strings"

// Outcome-data capability tokens.
const (
	TokenText           = "text"
	TokenURL            = "url"
	TokenNeedsGrading   = "needs_grading"
	TokenDate           = "date"
	TokenStatusOfResult = "status_of_result"
)

// ParamOutcomeDataValuesAccepted is the extension parameter key
// carrying the advertisement. On the wire it is prefixed with
// "ext_".
const ParamOutcomeDataValuesAccepted = "outcome_data_values_accepted"

// KnownTokens lists every outcome-data token this module knows.
var KnownTokens = []string{
	TokenText,
	TokenURL,
	TokenNeedsGrading,
	TokenDate,
	TokenStatusOfResult,
}

// Carrier stores extension parameters. *launch.Params satisfies
// it.
type Carrier interface {
	ExtParam(key string) (string, bool)
	SetExtParam(key, value string)
}

// Encode joins tokens with commas. Tokens are not validated.
func Encode(tokens []string) string {
	return strings.Join(tokens, ",")
}

// Decode splits an advertisement on commas. Order and duplicates
// are preserved; trailing empty fields are dropped, so the empty
// string decodes to no tokens.
func Decode(s string) []string {
	parts := strings.Split(s, ",")
	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}
