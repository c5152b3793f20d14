package outcome

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the closed classification of an outcome reply.
type Status string

// Reply classifications. Anything that is not one of the first
// three is a failure.
const (
	StatusSuccess     Status = "success"
	StatusProcessing  Status = "processing"
	StatusUnsupported Status = "unsupported"
	StatusFailure     Status = "failure"
)

// ParseStatus maps an imsx_codeMajor value onto a Status.
func ParseStatus(codeMajor string) Status {
	switch Status(strings.TrimSpace(codeMajor)) {
	case StatusSuccess:
		return StatusSuccess
	case StatusProcessing:
		return StatusProcessing
	case StatusUnsupported:
		return StatusUnsupported
	default:
		return StatusFailure
	}
}

// Severity values of imsx_severity.
const (
	SeverityStatus  = "status"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// RawReply is what a transport hands back for one post.
type RawReply struct {
	StatusCode int
	Body       []byte
}

// Response is the classified reply to an outcome request.
type Response struct {
	Status       Status
	CodeMajor    string
	Severity     string
	Description  string
	MessageID    string
	MessageRefID string
	OperationRef Operation
	// Score is filled for readResult replies that carry one.
	Score *float64

	HTTPStatus int
	Body       []byte
}

// Success reports a successful reply.
func (r *Response) Success() bool { return r.Status == StatusSuccess }

// Processing reports an accepted but not yet final reply.
func (r *Response) Processing() bool { return r.Status == StatusProcessing }

// Unsupported reports that the consumer declined the operation.
func (r *Response) Unsupported() bool { return r.Status == StatusUnsupported }

// Failure reports any other outcome, transport errors included.
func (r *Response) Failure() bool { return r.Status == StatusFailure }

// ClassifyReply turns a transport result into a Response. A
// transport error or an unreadable body is a failure.
func ClassifyReply(reply *RawReply, err error) *Response {
	if err != nil {
		return &Response{Status: StatusFailure, Severity: SeverityError, Description: err.Error()}
	}
	if reply == nil {
		return &Response{Status: StatusFailure, Severity: SeverityError, Description: "no reply"}
	}

	resp, perr := ParseResponse(reply.Body)
	if perr != nil {
		resp = &Response{
			Status:      StatusFailure,
			Severity:    SeverityError,
			Description: fmt.Sprintf("HTTP %d: %v", reply.StatusCode, perr),
			Body:        reply.Body,
		}
	}
	resp.HTTPStatus = reply.StatusCode
	return resp
}

// ParseResponse reads a POX response envelope.
func ParseResponse(body []byte) (*Response, error) {
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}
	if doc.Root.Name() != responseRoot {
		return nil, fmt.Errorf("unexpected reply root %q", doc.Root.Name())
	}

	text := func(path string) string {
		if v := doc.Text(path); v != nil {
			return strings.TrimSpace(*v)
		}
		return ""
	}

	resp := &Response{
		CodeMajor:    text("imsx_statusInfo/imsx_codeMajor"),
		Severity:     text("imsx_statusInfo/imsx_severity"),
		Description:  text("imsx_statusInfo/imsx_description"),
		MessageRefID: text("imsx_statusInfo/imsx_messageRefIdentifier"),
		OperationRef: Operation(text("imsx_statusInfo/imsx_operationRefIdentifier")),
		MessageID:    text("imsx_POXResponseHeaderInfo/imsx_messageIdentifier"),
		Body:         body,
	}
	resp.Status = ParseStatus(resp.CodeMajor)

	if raw := text("readResultResponse/result/resultScore/textString"); raw != "" {
		if score, err := strconv.ParseFloat(raw, 64); err == nil {
			resp.Score = &score
		}
	}
	return resp, nil
}

// Document assembles the POX response envelope, as a consumer
// sends it. Score is only written for readResult replies.
func (r *Response) Document() *Document {
	doc := NewDocument(responseRoot, Namespace)

	info := doc.Root.Element("imsx_POXHeader").Element("imsx_POXResponseHeaderInfo")
	info.AddText("imsx_version", POXVersion)
	info.AddText("imsx_messageIdentifier", r.MessageID)

	status := info.Element("imsx_statusInfo")
	status.AddText("imsx_codeMajor", string(r.Status))
	severity := r.Severity
	if severity == "" {
		severity = SeverityStatus
	}
	status.AddText("imsx_severity", severity)
	status.AddText("imsx_description", r.Description)
	status.AddText("imsx_messageRefIdentifier", r.MessageRefID)
	status.AddText("imsx_operationRefIdentifier", string(r.OperationRef))

	body := doc.Root.Element("imsx_POXBody")
	if r.OperationRef == "" {
		return doc
	}
	opResp := body.Element(string(r.OperationRef) + "Response")
	if r.OperationRef == OpReadResult {
		score := opResp.Element("result").Element("resultScore")
		score.AddText("language", ScoreLanguage)
		if r.Score != nil {
			score.AddText("textString", FormatScore(*r.Score))
		} else {
			score.AddText("textString", "")
		}
	}
	return doc
}

// Bytes serialises the response envelope.
func (r *Response) Bytes() ([]byte, error) {
	return r.Document().Bytes()
}
