package share

import (
	"net/http"
	"time"
)

// NewHTTPClient returns the client shared by the dps.report and wingman clients.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxConnsPerHost:       0,
		MaxIdleConns:          0,
		MaxIdleConnsPerHost:   64,
		ResponseHeaderTimeout: 30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 30 * time.Second,
	}

	return &http.Client{
		Timeout:   2 * time.Minute,
		Transport: tr,
	}
}
