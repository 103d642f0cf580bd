package sigv4_test

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	. "github.com/AlexanderConserva/s3probe/sigv4"
)

var _ = Describe("SigningTransport", func() {

	var (
		mockClock       *clock.Mock
		server          *httptest.Server
		receivedHeaders chan http.Header
		receivedBodies  chan []byte
		httpClient      *http.Client
	)

	BeforeEach(func() {
		mockClock = clock.NewMock()
		mockClock.Set(time.Date(2013, 5, 24, 0, 0, 0, 0, time.UTC))

		receivedHeaders = make(chan http.Header, 10)
		receivedBodies = make(chan []byte, 10)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, e := ioutil.ReadAll(r.Body)
			Expect(e).NotTo(HaveOccurred())
			receivedHeaders <- r.Header
			receivedBodies <- body
		}))

		signer, e := NewSigner(
			Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY"},
			"us-east-1", "s3")
		Expect(e).NotTo(HaveOccurred())

		httpClient = &http.Client{Transport: NewSigningTransport(signer, nil, mockClock, zap.NewNop().Sugar())}
	})

	AfterEach(func() {
		server.Close()
	})

	It("attaches the companion headers to a bodyless GET", func() {
		response, e := httpClient.Get(server.URL)
		Expect(e).NotTo(HaveOccurred())
		response.Body.Close()

		headers := <-receivedHeaders
		Expect(headers.Get("x-amz-date")).To(Equal("20130524T000000Z"))
		Expect(headers.Get("x-amz-content-sha256")).To(Equal(EmptyPayloadHash))
		Expect(headers.Get("Authorization")).To(MatchRegexp(
			`^AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20130524/us-east-1/s3/aws4_request, ` +
				`SignedHeaders=host;x-amz-content-sha256;x-amz-date, Signature=[0-9a-f]{64}$`))
	})

	It("hashes and preserves the request body", func() {
		response, e := httpClient.Post(server.URL, "text/plain", bytes.NewReader([]byte("Welcome to Amazon S3.")))
		Expect(e).NotTo(HaveOccurred())
		response.Body.Close()

		Expect(<-receivedBodies).To(Equal([]byte("Welcome to Amazon S3.")))
		headers := <-receivedHeaders
		Expect(headers.Get("x-amz-content-sha256")).To(
			Equal("44ce7dd67c959e0d3524ffac1771dfbba87d2b6b4b4e99e42034a8b803f8b072"))
	})

	It("signs every attempt with a fresh timestamp", func() {
		response, e := httpClient.Get(server.URL)
		Expect(e).NotTo(HaveOccurred())
		response.Body.Close()
		first := <-receivedHeaders
		<-receivedBodies

		mockClock.Add(time.Minute)

		response, e = httpClient.Get(server.URL)
		Expect(e).NotTo(HaveOccurred())
		response.Body.Close()
		second := <-receivedHeaders

		Expect(second.Get("x-amz-date")).To(Equal("20130524T000100Z"))
		Expect(second.Get("Authorization")).NotTo(Equal(first.Get("Authorization")))
	})

	It("does not mutate the caller's request", func() {
		request, e := http.NewRequest("GET", server.URL, nil)
		Expect(e).NotTo(HaveOccurred())

		response, e := httpClient.Do(request)
		Expect(e).NotTo(HaveOccurred())
		response.Body.Close()

		Expect(request.Header.Get("Authorization")).To(BeEmpty())
		Expect(request.Header.Get("x-amz-date")).To(BeEmpty())
	})
})
