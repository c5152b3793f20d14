// Package oauth signs and verifies LTI outcome posts with OAuth
// 1.0a HMAC-SHA1 and the oauth_body_hash extension.
package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Protocol constants.
const (
	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"
)

// OAuth parameter names.
const (
	ParamBodyHash        = "oauth_body_hash"
	ParamConsumerKey     = "oauth_consumer_key"
	ParamNonce           = "oauth_nonce"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamTimestamp       = "oauth_timestamp"
	ParamVersion         = "oauth_version"
)

// BodyHash is the base64 SHA-1 of the request body.
func BodyHash(body []byte) string {
	sum := sha1.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Escape percent-encodes s per RFC 3986: only unreserved
// characters are left as is.
func Escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// NormalizeURL returns scheme://host/path with default ports and
// the query removed.
func NormalizeURL(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if (scheme == "http" && strings.HasSuffix(host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndex(host, ":")]
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// BaseString builds the signature base string from the method,
// URL and every parameter except oauth_signature and realm.
func BaseString(method string, u *url.URL, params url.Values) string {
	type pair struct{ k, v string }
	var pairs []pair
	for k, vs := range params {
		if k == ParamSignature || k == "realm" {
			continue
		}
		for _, v := range vs {
			pairs = append(pairs, pair{Escape(k), Escape(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.k + "=" + p.v
	}
	return strings.ToUpper(method) + "&" +
		Escape(NormalizeURL(u)) + "&" +
		Escape(strings.Join(parts, "&"))
}

// Signature computes the HMAC-SHA1 signature. LTI uses two-legged
// OAuth, so the token secret is normally empty.
func Signature(method string, u *url.URL, params url.Values, consumerSecret, tokenSecret string) string {
	key := Escape(consumerSecret) + "&" + Escape(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(BaseString(method, u, params)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// FormatAuthorization renders an OAuth Authorization header with
// parameters in sorted order.
func FormatAuthorization(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, Escape(k), Escape(params.Get(k))))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// ParseAuthorization reads the parameters of an OAuth
// Authorization header.
func ParseAuthorization(header string) (url.Values, error) {
	rest, ok := strings.CutPrefix(header, "OAuth ")
	if !ok {
		return nil, fmt.Errorf("%w: not an OAuth authorization header", ErrMissingParameter)
	}

	params := url.Values{}
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("malformed authorization parameter %q", part)
		}
		key, err := url.PathUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("malformed authorization key %q: %w", k, err)
		}
		val, err := url.PathUnescape(strings.Trim(v, `"`))
		if err != nil {
			return nil, fmt.Errorf("malformed authorization value for %q: %w", key, err)
		}
		params.Set(key, val)
	}
	return params, nil
}
