// Package httpclient is the outbound HTTP layer used to reach prediction
// backends. An Adapter is bound to one backend base URL and applies the
// backend's retry policy and circuit breaker around every call.
//
//	a, err := httpclient.New(httpclient.Config{
//	    Name:    "transformer",
//	    BaseURL: "http://localhost:5002",
//	    Timeout: 300 * time.Second,
//	})
//
//	resp, err := a.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/predict",
//	    Host:   "repronet-trf-heb.example.com",
//	    Query:  map[string]string{"input": "shalom", "beam": "3"},
//	})
//
// Failures come back as *Error classified by transport or status code.
// Non-2xx responses also return the *Response so callers can read the body.
package httpclient
