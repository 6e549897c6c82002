package appliance

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gowebpki/jcs"
)

// Param is one query or form parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Order matters: the request signature
// covers the parameters in insertion order and without URL encoding, and the
// appliance computes the same string on its side. Encoding or reordering
// them breaks signature verification.
type Params []Param

// Encode joins the parameters as raw k=v pairs. This is the form that gets
// signed and the form posted as a request body.
func (p Params) Encode() string {
	pairs := make([]string, 0, len(p))
	for _, param := range p {
		pairs = append(pairs, param.Key+"="+param.Value)
	}
	return strings.Join(pairs, "&")
}

// Values converts the parameters for use in a wire query string, where
// normal URL encoding applies.
func (p Params) Values() url.Values {
	values := url.Values{}
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}
	return values
}

// dateLayout is an ISO-8601 UTC instant with microsecond precision.
const dateLayout = "2006-01-02T15:04:05.000000-07:00"

// Signer computes the per-request authentication signature the appliance
// API requires. Signing is pure: same inputs, same signature.
type Signer struct {
	publicToken  string
	privateToken string
}

func NewSigner(publicToken, privateToken string) *Signer {
	return &Signer{publicToken: publicToken, privateToken: privateToken}
}

// Timestamp renders the signing timestamp for a request. It must be
// generated once per request and sent verbatim in the Auth-Date header;
// any mismatch with the signed string invalidates the signature.
func (s *Signer) Timestamp(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// SignParams signs a request whose payload is an ordered parameter list.
// The payload segment is omitted entirely when there are no parameters.
func (s *Signer) SignParams(path, date string, params Params) string {
	signed := path
	if len(params) > 0 {
		signed += "?" + params.Encode()
	}
	return s.sign(signed, date)
}

// SignJSON signs a request with a JSON body. The body is canonicalized
// (RFC 8785) so both sides serialize it identically.
func (s *Signer) SignJSON(path, date string, body []byte) (string, error) {
	canonical, err := jcs.Transform(body)
	if err != nil {
		return "", fmt.Errorf("canonicalize request body: %w", err)
	}
	return s.sign(path+"?"+string(canonical), date), nil
}

func (s *Signer) sign(signedPath, date string) string {
	mac := hmac.New(sha1.New, []byte(s.privateToken))
	fmt.Fprintf(mac, "%s\n%s\n%s", signedPath, s.publicToken, date)
	return hex.EncodeToString(mac.Sum(nil))
}
