package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid-go/client"
	"github.com/flowgrid/flowgrid-go/pkg/credstore"
)

func testConfig(baseURL string) client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	cfg.Retries = 0
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, handler http.Handler, opts ...client.Option) (*client.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.New(testConfig(srv.URL), opts...)
	require.NoError(t, err)
	return c, srv
}

func TestNew_ValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := client.DefaultConfig()
	cfg.BaseURL = "not a url"
	_, err := client.New(cfg)
	assert.Error(t, err)

	cfg = client.DefaultConfig()
	cfg.Retries = -1
	_, err = client.New(cfg)
	assert.Error(t, err)
}

func TestDo_JSONDecoding(t *testing.T) {
	t.Parallel()

	t.Run("unwraps data envelope", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":{"id":"u1","email":"a@b.c"}}`)
		}))

		var out struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		require.NoError(t, c.Get(context.Background(), "/api/v1/auth/me", &out))
		assert.Equal(t, "u1", out.ID)
		assert.Equal(t, "a@b.c", out.Email)
	})

	t.Run("plain json without envelope", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"u2"}`)
		}))

		var out struct {
			ID string `json:"id"`
		}
		require.NoError(t, c.Get(context.Background(), "/thing", &out))
		assert.Equal(t, "u2", out.ID)
	})

	t.Run("text response", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, "pong")
		}))

		var out string
		require.NoError(t, c.Get(context.Background(), "/ping", &out))
		assert.Equal(t, "pong", out)
	})

	t.Run("binary response", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte{0x1, 0x2, 0x3})
		}))

		var out []byte
		require.NoError(t, c.Get(context.Background(), "/blob", &out))
		assert.Equal(t, []byte{0x1, 0x2, 0x3}, out)
	})
}

func TestDo_QuerySerialization(t *testing.T) {
	t.Parallel()

	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{}`)
	}))

	err := c.Get(context.Background(), "/api/v1/variables", nil, client.WithQuery(map[string]any{
		"scope": "global",
		"page":  2,
		"tags":  "a,b",
		"skip":  nil, // nil values are dropped
	}))
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "scope=global")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "tags=a%2Cb")
	assert.NotContains(t, gotQuery, "skip")
}

func TestDo_ErrorTranslation(t *testing.T) {
	t.Parallel()

	t.Run("structured error body", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"message":"key already exists","code":"DUPLICATE_KEY","details":{"key":"api_key"}}`)
		}))

		err := c.Post(context.Background(), "/api/v1/variables", map[string]string{"key": "api_key"}, nil)
		require.Error(t, err)

		apiErr, ok := client.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, apiErr.Status)
		assert.Equal(t, "DUPLICATE_KEY", apiErr.Code)
		assert.Equal(t, "key already exists", apiErr.Message)
		assert.Equal(t, "api_key", apiErr.Details["key"])
	})

	t.Run("non-json error body falls back to status text", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream broke")
		}))

		err := c.Get(context.Background(), "/x", nil)
		apiErr, ok := client.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.Equal(t, "Bad Gateway", apiErr.Message)
	})
}

func TestDo_RetryPolicy(t *testing.T) {
	t.Parallel()

	t.Run("4xx is not retried", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))

		err := c.Get(context.Background(), "/missing", nil, client.WithRetries(3))
		require.Error(t, err)
		assert.EqualValues(t, 1, attempts.Load(), "client errors must not be retried")
	})

	t.Run("408 and 429 are retried", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusRequestTimeout, http.StatusTooManyRequests} {
			var attempts atomic.Int32
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) == 1 {
					w.WriteHeader(status)
					return
				}
				fmt.Fprint(w, `{}`)
			}))

			err := c.Get(context.Background(), "/flaky", nil, client.WithRetries(2))
			require.NoError(t, err, "status %d", status)
			assert.EqualValues(t, 2, attempts.Load())
		}
	})

	t.Run("5xx retried up to retry budget", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))

		err := c.Get(context.Background(), "/broken", nil, client.WithRetries(2))
		require.Error(t, err)
		assert.EqualValues(t, 3, attempts.Load(), "initial attempt plus two retries")
		assert.True(t, client.IsStatus(err, http.StatusInternalServerError), "last error surfaces unchanged")
	})

	t.Run("success after transient failure", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ok":true}`)
		}))

		var out map[string]bool
		require.NoError(t, c.Get(context.Background(), "/eventually", &out, client.WithRetries(3)))
		assert.True(t, out["ok"])
	})
}

func TestDo_Cache(t *testing.T) {
	t.Parallel()

	t.Run("second GET within TTL skips transport", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"n":%d}`, hits.Load())
		}))

		var first, second map[string]int
		require.NoError(t, c.Get(context.Background(), "/counted", &first))
		require.NoError(t, c.Get(context.Background(), "/counted", &second))

		assert.EqualValues(t, 1, hits.Load())
		assert.Equal(t, first, second)
	})

	t.Run("distinct urls are distinct entries", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, `{}`)
		}))

		require.NoError(t, c.Get(context.Background(), "/a", nil))
		require.NoError(t, c.Get(context.Background(), "/b", nil))
		assert.EqualValues(t, 2, hits.Load())
	})

	t.Run("POST is never cached", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, `{}`)
		}))

		require.NoError(t, c.Post(context.Background(), "/w", nil, nil))
		require.NoError(t, c.Post(context.Background(), "/w", nil, nil))
		assert.EqualValues(t, 2, hits.Load())
	})

	t.Run("skip cache option", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, `{}`)
		}))

		require.NoError(t, c.Get(context.Background(), "/fresh", nil, client.SkipCache()))
		require.NoError(t, c.Get(context.Background(), "/fresh", nil, client.SkipCache()))
		assert.EqualValues(t, 2, hits.Load())
	})

	t.Run("invalidate cache", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, `{}`)
		}))

		require.NoError(t, c.Get(context.Background(), "/inv", nil))
		c.InvalidateCache()
		require.NoError(t, c.Get(context.Background(), "/inv", nil))
		assert.EqualValues(t, 2, hits.Load())
	})
}

func TestDo_Timeout(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))

	err := c.Get(context.Background(), "/slow", nil, client.WithTimeout(20*time.Millisecond))
	require.Error(t, err)
	_, isAPIErr := client.AsAPIError(err)
	assert.False(t, isAPIErr, "timeout is a transport error, not an API error")
}

func TestInterceptors(t *testing.T) {
	t.Parallel()

	t.Run("bearer token attached from store", func(t *testing.T) {
		t.Parallel()

		creds := credstore.NewCredentials(credstore.NewMemoryStore(), credstore.DefaultConfig())
		require.NoError(t, creds.SetAccessToken(context.Background(), "tok-123"))

		var gotAuth string
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{}`)
		}), client.WithCredentials(creds))

		require.NoError(t, c.Get(context.Background(), "/authed", nil))
		assert.Equal(t, "Bearer tok-123", gotAuth)
	})

	t.Run("skip auth omits bearer token", func(t *testing.T) {
		t.Parallel()

		creds := credstore.NewCredentials(credstore.NewMemoryStore(), credstore.DefaultConfig())
		require.NoError(t, creds.SetAccessToken(context.Background(), "tok-123"))

		var gotAuth string
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{}`)
		}), client.WithCredentials(creds))

		require.NoError(t, c.Post(context.Background(), "/login", nil, nil, client.SkipAuth()))
		assert.Empty(t, gotAuth)
	})

	t.Run("request id stamped", func(t *testing.T) {
		t.Parallel()

		var gotID string
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = r.Header.Get("X-Request-ID")
			fmt.Fprint(w, `{}`)
		}))

		require.NoError(t, c.Get(context.Background(), "/traced", nil))
		assert.NotEmpty(t, gotID)
	})

	t.Run("401 clears credentials and fires hook", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		creds := credstore.NewCredentials(credstore.NewMemoryStore(), credstore.DefaultConfig())
		require.NoError(t, creds.SaveSession(ctx, "tok", "refresh", []byte("{}")))

		var hookFired atomic.Bool
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}), client.WithCredentialsHook(creds, func(context.Context) { hookFired.Store(true) }))

		err := c.Get(ctx, "/protected", nil)
		require.Error(t, err)
		assert.True(t, hookFired.Load())

		token, err := creds.AccessToken(ctx)
		require.NoError(t, err)
		assert.Empty(t, token, "401 must clear stored credentials")
	})

	t.Run("401 on skip-auth request leaves credentials", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		creds := credstore.NewCredentials(credstore.NewMemoryStore(), credstore.DefaultConfig())
		require.NoError(t, creds.SaveSession(ctx, "tok", "refresh", []byte("{}")))

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}), client.WithCredentials(creds))

		err := c.Post(ctx, "/api/v1/auth/login", map[string]string{"email": "x"}, nil, client.SkipAuth())
		require.Error(t, err)

		token, getErr := creds.AccessToken(ctx)
		require.NoError(t, getErr)
		assert.Equal(t, "tok", token, "failed login must not wipe an existing session")
	})

	t.Run("custom request interceptor ordering", func(t *testing.T) {
		t.Parallel()

		var order []string
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		}),
			client.WithRequestInterceptor(client.RequestInterceptor{
				OnRequest: func(context.Context, client.RequestInfo, *http.Request) error {
					order = append(order, "first")
					return nil
				},
			}),
			client.WithRequestInterceptor(client.RequestInterceptor{
				OnRequest: func(context.Context, client.RequestInfo, *http.Request) error {
					order = append(order, "second")
					return nil
				},
			}),
		)

		require.NoError(t, c.Get(context.Background(), "/ordered", nil))
		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func TestUpload(t *testing.T) {
	t.Parallel()

	var gotContentType, gotFile, gotField string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gotFile = header.Filename
		gotField = r.FormValue("kind")

		fmt.Fprint(w, `{}`)
	}))

	err := c.Upload(context.Background(), "/api/v1/variables/import", "file", "vars.csv",
		strings.NewReader("key,value\na,1\n"), map[string]string{"kind": "csv"}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data; boundary="))
	assert.Equal(t, "vars.csv", gotFile)
	assert.Equal(t, "csv", gotField)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(client.Health{Status: "ok", Version: "1.4.2"})
		}))

		h, err := c.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ok", h.Status)
		assert.True(t, c.HealthCheck(context.Background()))
	})

	t.Run("unreachable swallows error", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig("http://127.0.0.1:1")
		cfg.HealthTimeout = 50 * time.Millisecond
		c, err := client.New(cfg)
		require.NoError(t, err)

		assert.False(t, c.HealthCheck(context.Background()))
	})
}

func TestBuildURL_AbsolutePassthrough(t *testing.T) {
	t.Parallel()

	var hit atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	// Base URL points elsewhere; the absolute endpoint wins.
	c, err := client.New(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), srv.URL+"/absolute", nil))
	assert.True(t, hit.Load())
}
