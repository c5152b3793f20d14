// Package outcomedata is the outcome-data extension: optional
// free text, URL, needs-grading flag, status marker and date sent
// alongside a score in a replaceResult request.
package outcomedata

import "strconv"

// Element names inside resultData, in emission order.
const (
	ElementResultData     = "resultData"
	ElementText           = "text"
	ElementURL            = "url"
	ElementNeedsGrading   = "needs_grading"
	ElementStatusOfResult = "status_of_result"
	ElementDate           = "date"
)

// StatusToBeModerated is the status marker consumers recognise for
// submissions awaiting moderation.
const StatusToBeModerated = "tobemoderated"

// ResultData holds the optional fields of one request. A nil
// field is absent. CDATAText wins over Text when both are set.
type ResultData struct {
	Text           *string
	CDATAText      *string
	URL            *string
	NeedsGrading   *string
	StatusOfResult *string
	Date           *string
}

// String returns a pointer to s, for filling ResultData literals.
func String(s string) *string {
	return &s
}

// NeedsGradingFlag renders b as the wire literal "true" or
// "false".
func NeedsGradingFlag(b bool) *string {
	return String(strconv.FormatBool(b))
}

// HasData reports whether any field is set.
func (d ResultData) HasData() bool {
	return d.CDATAText != nil ||
		d.Text != nil ||
		d.URL != nil ||
		d.NeedsGrading != nil ||
		d.StatusOfResult != nil ||
		d.Date != nil
}

// Fields lists the names of the set fields, using data keys.
func (d ResultData) Fields() []string {
	var fields []string
	add := func(key string, v *string) {
		if v != nil {
			fields = append(fields, key)
		}
	}
	add(KeyCDATAText, d.CDATAText)
	add(KeyText, d.Text)
	add(KeyURL, d.URL)
	add(KeyNeedsGrading, d.NeedsGrading)
	add(KeyStatusOfResult, d.StatusOfResult)
	add(KeyDate, d.Date)
	return fields
}
