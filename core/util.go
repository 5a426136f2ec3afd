package core

import (
	"crypto/tls"
	"net"
	"net/http"
)

// NewHttpClient returns a client with bounded dial, handshake and request
// times. tlsCfg may be nil.
func NewHttpClient(tlsCfg *tls.Config) *http.Client {
	var netTransport = &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HttpClientRequestDialerTimeout,
		}).DialContext,
		TLSHandshakeTimeout: TLSHandshakeTimeout,
		TLSClientConfig:     tlsCfg,
	}
	var netClient = &http.Client{
		Timeout:   HttpClientRequestTimeout,
		Transport: netTransport,
	}
	return netClient
}
