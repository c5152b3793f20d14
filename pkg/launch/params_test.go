package launch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_ExtAndCustom(t *testing.T) {
	p := New()
	p.SetExtParam("outcome_data_values_accepted", "text,url")
	p.SetCustomParam("course", "101")

	v, ok := p.Get("ext_outcome_data_values_accepted")
	assert.True(t, ok)
	assert.Equal(t, "text,url", v)

	v, ok = p.ExtParam("outcome_data_values_accepted")
	assert.True(t, ok)
	assert.Equal(t, "text,url", v)

	v, ok = p.CustomParam("course")
	assert.True(t, ok)
	assert.Equal(t, "101", v)

	_, ok = p.ExtParam("missing")
	assert.False(t, ok)
}

func TestParams_PresenceDistinctFromEmpty(t *testing.T) {
	p := New()
	p.SetExtParam("flag", "")

	v, ok := p.ExtParam("flag")
	assert.True(t, ok)
	assert.Empty(t, v)

	p.Delete("ext_flag")
	_, ok = p.ExtParam("flag")
	assert.False(t, ok)
}

func TestParams_WellKnown(t *testing.T) {
	p := FromMap(map[string]string{
		ParamOutcomeServiceURL: "http://lms.test/outcomes",
		ParamResultSourcedID:   "abc-123",
		ParamConsumerKey:       "key",
	})
	assert.Equal(t, "http://lms.test/outcomes", p.OutcomeServiceURL())
	assert.Equal(t, "abc-123", p.ResultSourcedID())
	assert.Equal(t, "key", p.ConsumerKey())
	assert.Equal(t, []string{
		ParamOutcomeServiceURL, ParamResultSourcedID, ParamConsumerKey,
	}, p.Keys())
}

func TestParams_EncodeRoundTrip(t *testing.T) {
	p := New()
	p.SetExtParam("outcome_data_values_accepted", "text,url,needs_grading")
	p.Set(ParamResultSourcedID, "a&b=c")

	form, err := url.ParseQuery(p.Encode())
	require.NoError(t, err)

	back := FromForm(form)
	v, ok := back.ExtParam("outcome_data_values_accepted")
	assert.True(t, ok)
	assert.Equal(t, "text,url,needs_grading", v)
	assert.Equal(t, "a&b=c", back.ResultSourcedID())
}

func TestFromForm_FirstValueWins(t *testing.T) {
	p := FromForm(url.Values{"user_id": {"1", "2"}, "empty": {}})
	v, _ := p.Get(ParamUserID)
	assert.Equal(t, "1", v)
	_, ok := p.Get("empty")
	assert.False(t, ok)
}
