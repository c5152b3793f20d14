// Package outcome builds, signs off to a transport, and classifies
// LTI 1.1 outcome requests. Optional request content is supplied
// by an ordered chain of extensions registered once per provider.
package outcome

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operation names an outcome service operation.
type Operation string

// Supported operations.
const (
	OpReplaceResult Operation = "replaceResult"
	OpReadResult    Operation = "readResult"
	OpDeleteResult  Operation = "deleteResult"
)

// Envelope constants.
const (
	Namespace     = "http://www.imsglobal.org/services/ltiv1p1/xsd/imsoms_v1p0"
	POXVersion    = "V1.0"
	ScoreLanguage = "en"

	requestRoot  = "imsx_POXEnvelopeRequest"
	responseRoot = "imsx_POXEnvelopeResponse"
)

var (
	// ErrScoreOutOfRange is returned for scores outside [0.0, 1.0].
	ErrScoreOutOfRange = errors.New("score must be between 0.0 and 1.0")
	// ErrMalformedRequest is returned when an inbound request is
	// not an outcome envelope.
	ErrMalformedRequest = errors.New("malformed outcome request")
	// ErrNotSubmittable is returned when posting a request that
	// was parsed rather than built by a Service.
	ErrNotSubmittable = errors.New("request is not bound to an outcome service")
)

// ValidateScore rejects NaN and scores outside [0.0, 1.0].
func ValidateScore(score float64) error {
	if math.IsNaN(score) || score < 0.0 || score > 1.0 {
		return fmt.Errorf("%w: got %v", ErrScoreOutOfRange, score)
	}
	return nil
}

// FormatScore renders a score the way it is sent on the wire.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Request is one outcome report attempt. Requests are not safe for
// concurrent use.
type Request struct {
	Operation Operation
	SourcedID string
	MessageID string
	Score     *float64

	chain   Chain
	service *Service
}

// Chain returns the request's extensions in registration order.
func (r *Request) Chain() Chain { return r.chain }

// Extension returns the request's instance of the named extension.
func (r *Request) Extension(name string) (Extension, bool) {
	return r.chain.Find(name)
}

// HasResultData reports whether a result element will be sent:
// either a score is set or some extension has data.
func (r *Request) HasResultData() bool {
	return r.Score != nil || r.chain.HasResultData()
}

// Document assembles the POX request envelope. Only replaceResult
// requests carry a result element; read and delete address the
// cell by sourcedId alone.
func (r *Request) Document() *Document {
	doc := NewDocument(requestRoot, Namespace)

	info := doc.Root.Element("imsx_POXHeader").Element("imsx_POXRequestHeaderInfo")
	info.AddText("imsx_version", POXVersion)
	info.AddText("imsx_messageIdentifier", r.MessageID)

	record := doc.Root.Element("imsx_POXBody").
		Element(string(r.Operation) + "Request").
		Element("resultRecord")
	record.Element("sourcedGUID").AddText("sourcedId", r.SourcedID)

	if r.Operation == OpReplaceResult && r.HasResultData() {
		result := record.Element("result")
		if r.Score != nil {
			score := result.Element("resultScore")
			score.AddText("language", ScoreLanguage)
			score.AddText("textString", FormatScore(*r.Score))
		}
		r.chain.ContributeResultValues(result)
	}
	return doc
}

// Bytes serialises the request envelope.
func (r *Request) Bytes() ([]byte, error) {
	return r.Document().Bytes()
}

// PostReplaceResult validates and sets score, then submits a
// replaceResult request.
func (r *Request) PostReplaceResult(ctx context.Context, score float64) (*Response, error) {
	if err := ValidateScore(score); err != nil {
		if r.service != nil {
			r.service.rejectScore(r, err)
		}
		return nil, err
	}
	r.Operation = OpReplaceResult
	r.Score = &score
	return r.post(ctx)
}

// PostReadResult submits a readResult request.
func (r *Request) PostReadResult(ctx context.Context) (*Response, error) {
	r.Operation = OpReadResult
	r.Score = nil
	return r.post(ctx)
}

// PostDeleteResult submits a deleteResult request.
func (r *Request) PostDeleteResult(ctx context.Context) (*Response, error) {
	r.Operation = OpDeleteResult
	r.Score = nil
	return r.post(ctx)
}

func (r *Request) post(ctx context.Context) (*Response, error) {
	if r.service == nil {
		return nil, ErrNotSubmittable
	}
	return r.service.submit(ctx, r)
}

// requestFromDocument reads the base fields of an inbound request.
func requestFromDocument(doc *Document) (*Request, error) {
	if doc.Root.Name() != requestRoot {
		return nil, fmt.Errorf("%w: root element %q", ErrMalformedRequest, doc.Root.Name())
	}
	body := doc.Root.Child("imsx_POXBody")
	if body == nil || body.Len() == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedRequest)
	}

	opElem := body.children[0].Name()
	if !strings.HasSuffix(opElem, "Request") {
		return nil, fmt.Errorf("%w: body element %q", ErrMalformedRequest, opElem)
	}

	req := &Request{Operation: Operation(strings.TrimSuffix(opElem, "Request"))}
	if id := doc.Text("imsx_POXRequestHeaderInfo/imsx_messageIdentifier"); id != nil {
		req.MessageID = *id
	}
	if sid := doc.Text("resultRecord/sourcedGUID/sourcedId"); sid != nil {
		req.SourcedID = *sid
	}
	if raw := doc.Text("resultRecord/result/resultScore/textString"); raw != nil {
		score, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: score %q", ErrMalformedRequest, *raw)
		}
		req.Score = &score
	}
	return req, nil
}
