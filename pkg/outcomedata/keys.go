package outcomedata

// Keys accepted by FromMap and the provider's map-based submit
// call. KeyStatusOfResult is spelled statusofResult, unlike the
// wire element status_of_result.
const (
	KeyText           = "text"
	KeyCDATAText      = "cdata_text"
	KeyURL            = "url"
	KeyNeedsGrading   = "needs_grading"
	KeyDate           = "date"
	KeyStatusOfResult = "statusofResult"
)

// Keys lists every recognised data key.
var Keys = []string{
	KeyText,
	KeyCDATAText,
	KeyURL,
	KeyNeedsGrading,
	KeyDate,
	KeyStatusOfResult,
}

// FromMap builds ResultData from untyped input. A present
// cdata_text suppresses text; unknown keys are ignored; values
// are not validated.
func FromMap(data map[string]string) ResultData {
	var d ResultData
	lookup := func(key string) *string {
		if v, ok := data[key]; ok {
			return String(v)
		}
		return nil
	}

	if v := lookup(KeyCDATAText); v != nil {
		d.CDATAText = v
	} else {
		d.Text = lookup(KeyText)
	}
	d.URL = lookup(KeyURL)
	d.NeedsGrading = lookup(KeyNeedsGrading)
	d.Date = lookup(KeyDate)
	d.StatusOfResult = lookup(KeyStatusOfResult)
	return d
}

// Map is the inverse of FromMap for set fields.
func (d ResultData) Map() map[string]string {
	m := make(map[string]string)
	set := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}
	set(KeyText, d.Text)
	set(KeyCDATAText, d.CDATAText)
	set(KeyURL, d.URL)
	set(KeyNeedsGrading, d.NeedsGrading)
	set(KeyDate, d.Date)
	set(KeyStatusOfResult, d.StatusOfResult)
	return m
}
