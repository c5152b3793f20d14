package oauth

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrMissingParameter is returned when a required OAuth
	// parameter is absent.
	ErrMissingParameter = errors.New("missing oauth parameter")
	// ErrUnknownConsumer is returned for an unrecognised key.
	ErrUnknownConsumer = errors.New("unknown oauth consumer key")
	// ErrInvalidSignature is returned when signatures differ.
	ErrInvalidSignature = errors.New("invalid oauth signature")
	// ErrBodyHash is returned when the body does not match
	// oauth_body_hash.
	ErrBodyHash = errors.New("oauth body hash mismatch")
	// ErrStaleTimestamp is returned when the timestamp is outside
	// the allowed skew.
	ErrStaleTimestamp = errors.New("oauth timestamp outside allowed window")
)

// SecretLookup returns the shared secret for a consumer key.
type SecretLookup func(consumerKey string) (string, bool)

// Verifier checks signed outcome posts on the consumer side.
type Verifier struct {
	Secrets SecretLookup
	Now     func() time.Time
	// MaxSkew bounds |now - oauth_timestamp|. Zero disables the
	// check.
	MaxSkew time.Duration
}

// NewVerifier creates a verifier with a five minute window.
func NewVerifier(secrets SecretLookup) *Verifier {
	return &Verifier{Secrets: secrets, Now: time.Now, MaxSkew: 5 * time.Minute}
}

// StaticSecrets serves secrets from a fixed map.
func StaticSecrets(m map[string]string) SecretLookup {
	return func(key string) (string, bool) {
		s, ok := m[key]
		return s, ok
	}
}

// Verify checks the Authorization header of req against body and
// returns the authenticated consumer key.
func (v *Verifier) Verify(req *http.Request, body []byte) (string, error) {
	params, err := ParseAuthorization(req.Header.Get("Authorization"))
	if err != nil {
		return "", err
	}

	for _, name := range []string{ParamConsumerKey, ParamSignature, ParamSignatureMethod, ParamTimestamp, ParamBodyHash} {
		if params.Get(name) == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
	}
	if m := params.Get(ParamSignatureMethod); m != SignatureMethod {
		return "", fmt.Errorf("%w: unsupported method %s", ErrInvalidSignature, m)
	}

	key := params.Get(ParamConsumerKey)
	secret, ok := v.Secrets(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConsumer, key)
	}

	if v.MaxSkew > 0 {
		ts, err := strconv.ParseInt(params.Get(ParamTimestamp), 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: bad timestamp", ErrStaleTimestamp)
		}
		skew := v.Now().Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > v.MaxSkew {
			return "", fmt.Errorf("%w: skew %s", ErrStaleTimestamp, skew)
		}
	}

	if !hmac.Equal([]byte(params.Get(ParamBodyHash)), []byte(BodyHash(body))) {
		return "", ErrBodyHash
	}

	all := url.Values{}
	for k, vs := range req.URL.Query() {
		all[k] = append(all[k], vs...)
	}
	for k, vs := range params {
		all[k] = append(all[k], vs...)
	}
	u := *req.URL
	if u.Host == "" {
		u.Host = req.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if req.TLS != nil {
			u.Scheme = "https"
		}
	}

	want := Signature(req.Method, &u, all, secret, "")
	if !hmac.Equal([]byte(want), []byte(params.Get(ParamSignature))) {
		return "", ErrInvalidSignature
	}
	return key, nil
}
