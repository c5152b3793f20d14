package outcome

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"success":       StatusSuccess,
		" processing\n": StatusProcessing,
		"unsupported":   StatusUnsupported,
		"failure":       StatusFailure,
		"Success":       StatusFailure,
		"":              StatusFailure,
		"weird":         StatusFailure,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseStatus(in), "%q", in)
	}
}

func TestClassifyReply_FourWay(t *testing.T) {
	for _, status := range []Status{StatusSuccess, StatusProcessing, StatusUnsupported, StatusFailure} {
		t.Run(string(status), func(t *testing.T) {
			body, err := (&Response{Status: status, OperationRef: OpReplaceResult}).Bytes()
			require.NoError(t, err)

			resp := ClassifyReply(&RawReply{StatusCode: 200, Body: body}, nil)
			assert.Equal(t, status, resp.Status)

			flags := []bool{resp.Success(), resp.Processing(), resp.Unsupported(), resp.Failure()}
			count := 0
			for _, f := range flags {
				if f {
					count++
				}
			}
			assert.Equal(t, 1, count, "exactly one classification holds")
		})
	}
}

func TestClassifyReply_TransportError(t *testing.T) {
	resp := ClassifyReply(nil, errors.New("connection refused"))
	assert.True(t, resp.Failure())
	assert.Equal(t, "connection refused", resp.Description)
	assert.Equal(t, SeverityError, resp.Severity)

	assert.True(t, ClassifyReply(nil, nil).Failure())
}

func TestClassifyReply_Unparsable(t *testing.T) {
	resp := ClassifyReply(&RawReply{StatusCode: 502, Body: []byte("<html>bad gateway")}, nil)
	assert.True(t, resp.Failure())
	assert.Equal(t, 502, resp.HTTPStatus)
	assert.Contains(t, resp.Description, "HTTP 502")

	resp = ClassifyReply(&RawReply{StatusCode: 200, Body: []byte("<other/>")}, nil)
	assert.True(t, resp.Failure())
}

func TestParseResponse_Fields(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<imsx_POXEnvelopeResponse xmlns="http://www.imsglobal.org/services/ltiv1p1/xsd/imsoms_v1p0">
  <imsx_POXHeader>
    <imsx_POXResponseHeaderInfo>
      <imsx_version>V1.0</imsx_version>
      <imsx_messageIdentifier>4560</imsx_messageIdentifier>
      <imsx_statusInfo>
        <imsx_codeMajor>success</imsx_codeMajor>
        <imsx_severity>status</imsx_severity>
        <imsx_description>Result read</imsx_description>
        <imsx_messageRefIdentifier>999999123</imsx_messageRefIdentifier>
        <imsx_operationRefIdentifier>readResult</imsx_operationRefIdentifier>
      </imsx_statusInfo>
    </imsx_POXResponseHeaderInfo>
  </imsx_POXHeader>
  <imsx_POXBody>
    <readResultResponse>
      <result>
        <resultScore>
          <language>en</language>
          <textString>0.91</textString>
        </resultScore>
      </result>
    </readResultResponse>
  </imsx_POXBody>
</imsx_POXEnvelopeResponse>`

	resp, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, "success", resp.CodeMajor)
	assert.Equal(t, SeverityStatus, resp.Severity)
	assert.Equal(t, "Result read", resp.Description)
	assert.Equal(t, "4560", resp.MessageID)
	assert.Equal(t, "999999123", resp.MessageRefID)
	assert.Equal(t, OpReadResult, resp.OperationRef)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 0.91, *resp.Score)
}

func TestResponse_DocumentRoundTrip(t *testing.T) {
	score := 0.4
	out := &Response{
		Status:       StatusUnsupported,
		Severity:     SeverityWarning,
		Description:  "no such op",
		MessageID:    "r-1",
		MessageRefID: "m-1",
		OperationRef: OpReadResult,
		Score:        &score,
	}
	body, err := out.Bytes()
	require.NoError(t, err)

	back, err := ParseResponse(body)
	require.NoError(t, err)
	assert.True(t, back.Unsupported())
	assert.Equal(t, SeverityWarning, back.Severity)
	assert.Equal(t, "no such op", back.Description)
	assert.Equal(t, "r-1", back.MessageID)
	assert.Equal(t, "m-1", back.MessageRefID)
	require.NotNil(t, back.Score)
	assert.Equal(t, 0.4, *back.Score)
}
