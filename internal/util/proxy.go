// Package util holds the HTTP plumbing shared by the page fetcher and the model clients.
package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc creates a proxy function from explicit settings.
// With no proxy URLs configured the environment (HTTP_PROXY, HTTPS_PROXY,
// NO_PROXY) decides. noProxy uses the NO_PROXY syntax and applies to both.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		if noProxy == "" {
			return http.ProxyFromEnvironment
		}
		env := httpproxy.FromEnvironment()
		env.NoProxy = noProxy
		return wrap(env.ProxyFunc())
	}

	cfg := &httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}
	// An http proxy alone also carries https traffic
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = httpProxy
	}
	return wrap(cfg.ProxyFunc())
}

func wrap(fn func(*url.URL) (*url.URL, error)) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}
