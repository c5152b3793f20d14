package oauth

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Signer signs outcome posts for one consumer key.
type Signer struct {
	ConsumerKey    string
	ConsumerSecret string

	// Now and Nonce are replaceable for deterministic tests.
	Now   func() time.Time
	Nonce func() string
}

// NewSigner creates a signer with a wall clock and uuid nonces.
func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Now:            time.Now,
		Nonce:          uuid.NewString,
	}
}

// Sign sets the Authorization header of req for body. The body
// itself is not read from req.
func (s *Signer) Sign(req *http.Request, body []byte) {
	oauthParams := url.Values{}
	oauthParams.Set(ParamBodyHash, BodyHash(body))
	oauthParams.Set(ParamConsumerKey, s.ConsumerKey)
	oauthParams.Set(ParamNonce, s.Nonce())
	oauthParams.Set(ParamSignatureMethod, SignatureMethod)
	oauthParams.Set(ParamTimestamp, strconv.FormatInt(s.Now().Unix(), 10))
	oauthParams.Set(ParamVersion, Version)

	all := url.Values{}
	for k, vs := range req.URL.Query() {
		all[k] = append(all[k], vs...)
	}
	for k, vs := range oauthParams {
		all[k] = append(all[k], vs...)
	}

	oauthParams.Set(ParamSignature, Signature(req.Method, req.URL, all, s.ConsumerSecret, ""))
	req.Header.Set("Authorization", FormatAuthorization(oauthParams))
}
