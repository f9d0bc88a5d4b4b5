package proxy

import (
	"context"
	"net/http"
	"net/url"
)

type ctxKey struct{}

// Transport chooses a proxy from Pool for every request and reports the
// outcome back to the pool. Base.Proxy is replaced on construction.
type Transport struct {
	Pool *ProxyPool
	Base *http.Transport
}

// NewTransport wires base to read the proxy chosen for each request
func NewTransport(pool *ProxyPool, base *http.Transport) *Transport {
	base.Proxy = func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(ctxKey{}).(*url.URL); ok {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}
	return &Transport{Pool: pool, Base: base}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Pool == nil || t.Pool.Len() == 0 {
		return t.Base.RoundTrip(req)
	}

	chosen := t.Pool.GetNext()
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, chosen))

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		t.Pool.MarkFailed(chosen)
		return nil, err
	}
	t.Pool.MarkHealthy(chosen)
	return resp, nil
}
