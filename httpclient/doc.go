// Package httpclient is the HTTP transport used by the DeepSeek client.
//
// The dispatch engine only depends on the Transport interface: send a
// request with method, URL, headers, body and timeout, and receive the
// status, headers and body bytes, or a transport-level *Error. Status
// codes are not interpreted here.
//
// Adapter implements Transport on net/http with TLS settings, http, https
// and socks5 proxies, and HTTP/2 connection health checks.
//
// # Basic Usage
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    Timeout: 30 * time.Second,
//	    Proxy:   "socks5://127.0.0.1:1080",
//	})
//
//	resp, err := adapter.Execute(ctx, httpclient.Request{
//	    Method:  http.MethodPost,
//	    URL:     "https://api.deepseek.com/chat/completions",
//	    Headers: headers,
//	    Body:    payload,
//	})
//
// The testutil subpackage provides a scripted Transport for tests.
package httpclient
