package outcomedata

import (
	"digital.vasic.outcomes/pkg/outcome"
)

// Name identifies the extension in a request's chain.
const Name = "outcome_data"

const resultDataPath = "resultRecord/result/" + ElementResultData + "/"

// Factory registers the extension with an outcome service.
type Factory struct{}

// Name returns the extension name.
func (Factory) Name() string { return Name }

// NewExtension returns an empty per-request extension.
func (Factory) NewExtension() outcome.Extension { return &Extension{} }

// Extension carries the outcome data of one request.
type Extension struct {
	data ResultData
}

// From returns the outcome-data extension of req, or nil when it
// is not registered on the request's service.
func From(req *outcome.Request) *Extension {
	ext, ok := req.Extension(Name)
	if !ok {
		return nil
	}
	e, _ := ext.(*Extension)
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return Name }

// Data returns a copy of the current fields.
func (e *Extension) Data() ResultData { return e.data }

// SetData replaces all fields.
func (e *Extension) SetData(d ResultData) { e.data = d }

// SetText sets escaped free text.
func (e *Extension) SetText(s string) { e.data.Text = String(s) }

// SetCDATAText sets free text sent as a CDATA section. It takes
// priority over SetText. Characters XML cannot carry are sent as
// U+FFFD.
func (e *Extension) SetCDATAText(s string) { e.data.CDATAText = String(s) }

// SetURL sets a link to the learner's submission.
func (e *Extension) SetURL(s string) { e.data.URL = String(s) }

// SetNeedsGrading sets the needs_grading literal as given.
func (e *Extension) SetNeedsGrading(s string) { e.data.NeedsGrading = String(s) }

// SetNeedsGradingFlag sets needs_grading to "true" or "false".
func (e *Extension) SetNeedsGradingFlag(b bool) { e.data.NeedsGrading = NeedsGradingFlag(b) }

// SetStatusOfResult sets the status marker, e.g.
// StatusToBeModerated.
func (e *Extension) SetStatusOfResult(s string) { e.data.StatusOfResult = String(s) }

// SetDate sets the result date. The format is the caller's.
func (e *Extension) SetDate(s string) { e.data.Date = String(s) }

// HasResultData reports whether any field is set.
func (e *Extension) HasResultData() bool { return e.data.HasData() }

// ContributeResultValues appends a resultData element when any
// field is set. Children follow the fixed order text, url,
// needs_grading, status_of_result, date.
func (e *Extension) ContributeResultValues(result *outcome.Node) {
	d := e.data
	if !d.HasData() {
		return
	}

	rd := result.Element(ElementResultData)
	switch {
	case d.CDATAText != nil:
		rd.AddCDATA(ElementText, *d.CDATAText)
	case d.Text != nil:
		rd.AddText(ElementText, *d.Text)
	}
	if d.URL != nil {
		rd.AddText(ElementURL, *d.URL)
	}
	if d.NeedsGrading != nil {
		rd.AddText(ElementNeedsGrading, *d.NeedsGrading)
	}
	if d.StatusOfResult != nil {
		rd.AddText(ElementStatusOfResult, *d.StatusOfResult)
	}
	if d.Date != nil {
		rd.AddText(ElementDate, *d.Date)
	}
}

// ExtractFields reads the resultData children of an inbound
// request. Text sent as CDATA comes back in Text; CDATAText is
// never set by parsing.
func (e *Extension) ExtractFields(doc *outcome.Document) {
	e.data = ResultData{
		Text:           doc.Text(resultDataPath + ElementText),
		URL:            doc.Text(resultDataPath + ElementURL),
		NeedsGrading:   doc.Text(resultDataPath + ElementNeedsGrading),
		Date:           doc.Text(resultDataPath + ElementDate),
		StatusOfResult: doc.Text(resultDataPath + ElementStatusOfResult),
	}
}
