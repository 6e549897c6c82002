package appliance

import (
	"testing"
	"time"
)

const (
	testPublicToken  = "publictoken"
	testPrivateToken = "privatetoken"
	testDate         = "2024-01-02T03:04:05.000000+00:00"
)

func TestSignParamsKnownDigest(t *testing.T) {
	signer := NewSigner(testPublicToken, testPrivateToken)

	params := Params{
		{"from", "2024-01-01T21:04:05.00Z"},
		{"to", "2024-01-02T03:04:05.00Z"},
		{"includeacknowledged", "true"},
	}

	// Verified against an independent HMAC-SHA1 implementation.
	want := "5ad4e46668d49a24adcb053e26753a4e4a7a7776"
	got := signer.SignParams("/modelbreaches", testDate, params)
	if got != want {
		t.Errorf("SignParams = %s, want %s", got, want)
	}

	// Signing is pure: same inputs, same signature.
	if again := signer.SignParams("/modelbreaches", testDate, params); again != got {
		t.Errorf("SignParams not deterministic: %s != %s", again, got)
	}
}

func TestSignEmptyPayloadOmitsQuery(t *testing.T) {
	signer := NewSigner(testPublicToken, testPrivateToken)

	want := "2aba7e388761ae985b29e34857440a6c5cc12f9a"
	got := signer.SignParams("/summarystatistics", testDate, nil)
	if got != want {
		t.Errorf("SignParams = %s, want %s", got, want)
	}
}

func TestSignJSONKnownDigest(t *testing.T) {
	signer := NewSigner(testPublicToken, testPrivateToken)

	want := "97fd656abe23114cec0df96adb5a673e2f78be9a"
	got, err := signer.SignJSON("/modelbreaches/123/comments", testDate, []byte(`{"message":"hi"}`))
	if err != nil {
		t.Fatalf("SignJSON: %v", err)
	}
	if got != want {
		t.Errorf("SignJSON = %s, want %s", got, want)
	}
}

func TestJSONAndFormEncodingsDiffer(t *testing.T) {
	// The same logical payload must sign differently as a form and as a
	// JSON body; the remote verifier is sensitive to the encoding.
	signer := NewSigner(testPublicToken, testPrivateToken)

	asForm := signer.SignParams("/x", testDate, Params{{"a", "1"}, {"b", "2"}})
	asJSON, err := signer.SignJSON("/x", testDate, []byte(`{"a":"1","b":"2"}`))
	if err != nil {
		t.Fatalf("SignJSON: %v", err)
	}

	if wantForm := "1d1c109bdbb18dee603576dd5f68928dcf0830e4"; asForm != wantForm {
		t.Errorf("form signature = %s, want %s", asForm, wantForm)
	}
	if wantJSON := "224e3260ce37d798146003a3a502575517fcba12"; asJSON != wantJSON {
		t.Errorf("json signature = %s, want %s", asJSON, wantJSON)
	}
	if asForm == asJSON {
		t.Error("form and json signatures should differ for the same payload content")
	}
}

func TestTimestampFormat(t *testing.T) {
	signer := NewSigner(testPublicToken, testPrivateToken)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := signer.Timestamp(at); got != testDate {
		t.Errorf("Timestamp = %s, want %s", got, testDate)
	}
}

func TestParamsEncodeIsRaw(t *testing.T) {
	// No URL encoding: colons and equals travel as-is into the signed
	// string.
	params := Params{{"from", "2024-01-01T21:04:05.00Z"}, {"flag", "a=b"}}
	want := "from=2024-01-01T21:04:05.00Z&flag=a=b"
	if got := params.Encode(); got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}
