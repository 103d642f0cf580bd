package s3probe

import (
	"io"
	"io/ioutil"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/AlexanderConserva/s3probe/httputil"
)

// ListBucketsClient issues the authenticated bodyless GET against the storage
// endpoint's root path. Signing happens in the http.Client's transport,
// immediately before each send; this client never caches headers or
// interprets a remote rejection beyond returning the response.
type ListBucketsClient struct {
	httpClient     *http.Client
	endpoint       *url.URL
	maxBodySize    uint64
	metricsService MetricsService
	logger         *zap.SugaredLogger
}

type ListBucketsResult struct {
	StatusCode int
	Body       []byte
}

func NewListBucketsClient(httpClient *http.Client, endpoint *url.URL, maxBodySize uint64, metricsService MetricsService, logger *zap.SugaredLogger) *ListBucketsClient {
	return &ListBucketsClient{
		httpClient:     httpClient,
		endpoint:       endpoint,
		maxBodySize:    maxBodySize,
		metricsService: metricsService,
		logger:         logger,
	}
}

func (client *ListBucketsClient) ListBuckets() (ListBucketsResult, error) {
	requestURL := &url.URL{Scheme: client.endpoint.Scheme, Host: client.endpoint.Host, Path: "/"}

	client.logger.Debugw("Listing buckets", "endpoint", requestURL.String())

	request, e := httputil.NewGetRequest(requestURL.String(), http.Header{"User-Agent": []string{"s3probe"}})
	if e != nil {
		return ListBucketsResult{}, e
	}

	startTime := time.Now()
	response, e := client.httpClient.Do(request)
	client.metricsService.SendTimingMetric("list_buckets-time", time.Since(startTime))
	if e != nil {
		client.metricsService.SendCounterMetric("list_buckets-failures", 1)
		return ListBucketsResult{}, errors.Wrapf(e, "list buckets request failed (endpoint=%v)", requestURL)
	}
	defer response.Body.Close()

	var bodyReader io.Reader = response.Body
	if client.maxBodySize > 0 {
		limit := client.maxBodySize
		if limit > math.MaxInt64 {
			limit = math.MaxInt64
		}
		bodyReader = io.LimitReader(response.Body, int64(limit))
	}
	body, e := ioutil.ReadAll(bodyReader)
	if e != nil {
		client.metricsService.SendCounterMetric("list_buckets-failures", 1)
		return ListBucketsResult{}, errors.Wrapf(e, "could not read list buckets response (endpoint=%v)", requestURL)
	}

	if response.StatusCode != http.StatusOK {
		client.metricsService.SendCounterMetric("list_buckets-rejections", 1)
		client.logger.Infow("List buckets request rejected",
			"status-code", response.StatusCode,
			"endpoint", requestURL.String())
	}

	return ListBucketsResult{StatusCode: response.StatusCode, Body: body}, nil
}
