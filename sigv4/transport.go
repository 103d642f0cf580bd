package sigv4

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SigningTransport is an http.RoundTripper that signs every outgoing request
// immediately before handing it to the wrapped transport. Each attempt gets a
// fresh timestamp from the clock; nothing is cached between attempts, so a
// retry through this transport always produces a new signature.
type SigningTransport struct {
	signer  *Signer
	wrapped http.RoundTripper
	clock   clock.Clock
	logger  *zap.SugaredLogger
}

func NewSigningTransport(signer *Signer, wrapped http.RoundTripper, clock clock.Clock, logger *zap.SugaredLogger) *SigningTransport {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &SigningTransport{signer: signer, wrapped: wrapped, clock: clock, logger: logger}
}

func (transport *SigningTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	signedRequest := request.Clone(request.Context())

	payloadHash := EmptyPayloadHash
	if request.Body != nil {
		payload, e := ioutil.ReadAll(request.Body)
		request.Body.Close()
		if e != nil {
			return nil, errors.Wrapf(e, "could not buffer request body for signing (%v %v)", request.Method, request.URL)
		}
		payloadHash = PayloadHash(payload)
		signedRequest.Body = ioutil.NopCloser(bytes.NewReader(payload))
		signedRequest.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(payload)), nil
		}
	}

	host := signedRequest.Host
	if host == "" {
		host = signedRequest.URL.Host
	}

	signature, e := transport.signer.Sign(RequestValues{
		Method:      signedRequest.Method,
		Host:        host,
		Path:        signedRequest.URL.EscapedPath(),
		Query:       signedRequest.URL.RawQuery,
		PayloadHash: payloadHash,
	}, transport.clock.Now())
	if e != nil {
		return nil, errors.Wrapf(e, "could not sign request (%v %v)", signedRequest.Method, signedRequest.URL)
	}

	for name, values := range signature.Headers {
		for _, value := range values {
			signedRequest.Header.Set(name, value)
		}
	}

	transport.logger.Debugw("Signed request",
		"method", signedRequest.Method,
		"host", host,
		"path", signedRequest.URL.EscapedPath(),
		"credential-scope", signature.CredentialScope)

	return transport.wrapped.RoundTrip(signedRequest)
}
