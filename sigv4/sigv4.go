// Package sigv4 signs HTTP requests with AWS Signature Version 4 without
// going through a vendor SDK. The signature is computed over a canonical
// representation of the request and a key derived from the secret access key
// through a 4-stage HMAC-SHA256 chain. See
// https://docs.aws.amazon.com/IAM/latest/UserGuide/create-signed-request.html
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	Algorithm = "AWS4-HMAC-SHA256"

	// EmptyPayloadHash is the hex SHA-256 of an empty byte sequence, used as
	// the payload hash for bodyless requests.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	amzDateFormat   = "20060102T150405Z"
	dateStampFormat = "20060102"
	requestSuffix   = "aws4_request"
)

type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func (credentials Credentials) Validate() error {
	var errs []string
	if credentials.AccessKeyID == "" {
		errs = append(errs, "AccessKeyID must not be empty")
	}
	if credentials.SecretAccessKey == "" {
		errs = append(errs, "SecretAccessKey must not be empty")
	}
	if len(errs) > 0 {
		return errors.New("invalid credentials: " + strings.Join(errs, "; "))
	}
	return nil
}

// RequestValues are the request attributes that enter the canonical request.
// Query must be pre-encoded and sorted by parameter name; an empty Path means
// "/"; an empty PayloadHash means EmptyPayloadHash.
type RequestValues struct {
	Method      string
	Host        string
	Path        string
	Query       string
	PayloadHash string
}

// SignedRequest is the structured outcome of one signing computation. It is
// regenerated per request and must not be reused: the timestamp it was
// computed with is baked into every field.
type SignedRequest struct {
	CanonicalRequest string
	StringToSign     string
	CredentialScope  string
	Signature        string
	Authorization    string
	Headers          http.Header
}

type Signer struct {
	credentials Credentials
	region      string
	service     string
}

func NewSigner(credentials Credentials, region string, service string) (*Signer, error) {
	if e := credentials.Validate(); e != nil {
		return nil, e
	}
	if region == "" {
		return nil, errors.New("region must not be empty")
	}
	if service == "" {
		return nil, errors.New("service must not be empty")
	}
	return &Signer{credentials: credentials, region: region, service: service}, nil
}

// Sign computes the Authorization header and its companion headers for the
// given request attributes. t is captured once and used consistently for the
// x-amz-date header, the credential scope and the string-to-sign. Sign is
// pure and safe for concurrent use.
func (signer *Signer) Sign(values RequestValues, t time.Time) (SignedRequest, error) {
	if e := signer.credentials.Validate(); e != nil {
		return SignedRequest{}, e
	}
	if values.Host == "" {
		return SignedRequest{}, errors.New("Host must not be empty")
	}

	amzDate := t.UTC().Format(amzDateFormat)
	dateStamp := t.UTC().Format(dateStampFormat)
	payloadHash := values.PayloadHash
	if payloadHash == "" {
		payloadHash = EmptyPayloadHash
	}

	canonicalHeaders := map[string]string{
		"host":                 values.Host,
		"x-amz-content-sha256": payloadHash,
		"x-amz-date":           amzDate,
	}
	if signer.credentials.SessionToken != "" {
		canonicalHeaders["x-amz-security-token"] = signer.credentials.SessionToken
	}

	canonicalRequest, signedHeaders := CanonicalRequest(values.Method, values.Path, values.Query, canonicalHeaders, payloadHash)
	scope := CredentialScope(dateStamp, signer.region, signer.service)
	stringToSign := StringToSign(amzDate, scope, canonicalRequest)
	signingKey := SigningKey(signer.credentials.SecretAccessKey, dateStamp, signer.region, signer.service)
	signature := SignatureFor(signingKey, stringToSign)

	authorization := fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		Algorithm, signer.credentials.AccessKeyID, scope, signedHeaders, signature)

	headers := make(http.Header)
	headers.Set("x-amz-date", amzDate)
	headers.Set("x-amz-content-sha256", payloadHash)
	headers.Set("Authorization", authorization)
	if signer.credentials.SessionToken != "" {
		headers.Set("x-amz-security-token", signer.credentials.SessionToken)
	}

	return SignedRequest{
		CanonicalRequest: canonicalRequest,
		StringToSign:     stringToSign,
		CredentialScope:  scope,
		Signature:        signature,
		Authorization:    authorization,
		Headers:          headers,
	}, nil
}

// CanonicalRequest renders the six-part canonical request and the matching
// signed-headers list. Header names are lowercased and sorted, values
// trimmed; the headers block carries a trailing newline before the blank
// separator line. Any deviation here makes the server reject the signature.
func CanonicalRequest(method string, path string, query string, headers map[string]string, payloadHash string) (canonicalRequest string, signedHeaders string) {
	if path == "" {
		path = "/"
	}

	names := make([]string, 0, len(headers))
	lowercased := make(map[string]string, len(headers))
	for name, value := range headers {
		lowerName := strings.ToLower(name)
		names = append(names, lowerName)
		lowercased[lowerName] = strings.TrimSpace(value)
	}
	sort.Strings(names)

	var headerBlock strings.Builder
	for _, name := range names {
		headerBlock.WriteString(name)
		headerBlock.WriteString(":")
		headerBlock.WriteString(lowercased[name])
		headerBlock.WriteString("\n")
	}
	signedHeaders = strings.Join(names, ";")

	canonicalRequest = strings.Join([]string{
		strings.ToUpper(method),
		path,
		query,
		headerBlock.String(),
		signedHeaders,
		payloadHash,
	}, "\n")
	return
}

// StringToSign joins algorithm, timestamp, credential scope and the hex
// SHA-256 of the canonical request with newlines.
func StringToSign(amzDate string, credentialScope string, canonicalRequest string) string {
	digest := sha256.Sum256([]byte(canonicalRequest))
	return strings.Join([]string{
		Algorithm,
		amzDate,
		credentialScope,
		hex.EncodeToString(digest[:]),
	}, "\n")
}

func CredentialScope(dateStamp string, region string, service string) string {
	return strings.Join([]string{dateStamp, region, service, requestSuffix}, "/")
}

// SigningKey derives the request-scoped signing key. Each stage's raw binary
// output keys the next stage. The key is request-scoped secret material:
// never cache it across dates, regions or services and never log it.
func SigningKey(secretAccessKey string, dateStamp string, region string, service string) []byte {
	dateKey := hmacSHA256([]byte("AWS4"+secretAccessKey), dateStamp)
	regionKey := hmacSHA256(dateKey, region)
	serviceKey := hmacSHA256(regionKey, service)
	return hmacSHA256(serviceKey, requestSuffix)
}

// SignatureFor computes the final hex signature over the string-to-sign.
func SignatureFor(signingKey []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(signingKey, stringToSign))
}

// PayloadHash returns the lowercase hex SHA-256 of a request body.
func PayloadHash(body []byte) string {
	digest := sha256.Sum256(body)
	return hex.EncodeToString(digest[:])
}

func hmacSHA256(key []byte, message string) []byte {
	hash := hmac.New(sha256.New, key)
	hash.Write([]byte(message))
	return hash.Sum(nil)
}
