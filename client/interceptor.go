package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/flowgrid/flowgrid-go/pkg/credstore"
)

// RequestInfo describes the logical request an interceptor is observing,
// independent of the concrete *http.Request of the current attempt.
type RequestInfo struct {
	Method   string
	URL      string
	SkipAuth bool
}

// RequestInterceptor hooks into outgoing requests. OnRequest may mutate the
// request; returning an error aborts the attempt. OnError observes that
// abort and may translate the error before it propagates.
type RequestInterceptor struct {
	OnRequest func(ctx context.Context, info RequestInfo, req *http.Request) error
	OnError   func(ctx context.Context, info RequestInfo, err error) error
}

// ResponseInterceptor hooks into responses. OnResponse runs on every HTTP
// response before status handling; returning an error fails the attempt.
// OnError runs when an attempt failed (transport error or non-2xx) and may
// translate the error before it propagates.
type ResponseInterceptor struct {
	OnResponse func(ctx context.Context, info RequestInfo, resp *http.Response) error
	OnError    func(ctx context.Context, info RequestInfo, err error) error
}

// BearerAuthInterceptor injects "Authorization: Bearer <token>" from the
// credential store, unless the call opted out with SkipAuth. A missing token
// is not an error; the server decides whether the request needed one.
func BearerAuthInterceptor(creds *credstore.Credentials) RequestInterceptor {
	return RequestInterceptor{
		OnRequest: func(ctx context.Context, info RequestInfo, req *http.Request) error {
			if info.SkipAuth || creds == nil {
				return nil
			}

			token, err := creds.AccessToken(ctx)
			if err != nil {
				return err
			}

			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return nil
		},
	}
}

// RequestIDInterceptor stamps every request with a unique X-Request-ID so
// client and server logs can be correlated. An ID already present (e.g.
// propagated from an inbound request) is kept.
func RequestIDInterceptor() RequestInterceptor {
	return RequestInterceptor{
		OnRequest: func(_ context.Context, _ RequestInfo, req *http.Request) error {
			if req.Header.Get("X-Request-ID") == "" {
				req.Header.Set("X-Request-ID", uuid.NewString())
			}
			return nil
		},
	}
}

// UnauthorizedInterceptor centralizes 401 handling: stored credentials are
// cleared and the hook is invoked so the application can force a re-login.
// Requests flagged SkipAuth (the login family itself) never trigger it,
// which prevents a failed login from looping into the logout path.
func UnauthorizedInterceptor(creds *credstore.Credentials, onUnauthorized func(ctx context.Context)) ResponseInterceptor {
	return ResponseInterceptor{
		OnError: func(ctx context.Context, info RequestInfo, err error) error {
			if info.SkipAuth || !IsStatus(err, http.StatusUnauthorized) {
				return err
			}

			if creds != nil {
				// The 401 is the error that matters; a failed cleanup
				// must not mask it.
				_ = creds.Clear(ctx)
			}

			if onUnauthorized != nil {
				onUnauthorized(ctx)
			}
			return err
		},
	}
}
