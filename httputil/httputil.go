package httputil

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func NewGetRequest(url string, header http.Header) (*http.Request, error) {
	request, e := http.NewRequest("GET", url, nil)
	if e != nil {
		return nil, errors.Wrapf(e, "url=%v", url)
	}
	AddHeaderTo(request, header)
	return request, nil
}

func AddHeaderTo(request *http.Request, header http.Header) {
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
}

func MustParse(rawUrl string) *url.URL {
	u, e := url.ParseRequestURI(rawUrl)
	if e != nil {
		panic(e)
	}
	return u
}
