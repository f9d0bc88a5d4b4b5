package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/retry"
)

func testOptions(baseURL string) Options {
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	return Options{
		BaseURL:   baseURL,
		UserAgent: "TestSession/1.0",
		Headers:   map[string]string{"Accept-Language": "en-US"},
		Timeout:   5 * time.Second,
		Retry:     cfg,
	}
}

func TestSession_KeepsCookiesAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		case "/me":
			c, err := r.Cookie("sid")
			if err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(r.Header.Get("User-Agent") + "|" + r.Header.Get("Accept-Language")))
		}
	}))
	defer server.Close()

	sess, err := New(testOptions(server.URL))
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Get(context.Background(), server.URL+"/login")
	require.NoError(t, err)

	resp, err := sess.Get(context.Background(), server.URL+"/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "TestSession/1.0|en-US", string(resp.Body))
}

func TestSession_PostFormAndJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"paged":"` + r.PostForm.Get("paged") + `"}`))
	}))
	defer server.Close()

	sess, err := New(testOptions(server.URL))
	require.NoError(t, err)

	resp, err := sess.PostForm(context.Background(), server.URL, url.Values{"paged": {"7"}}, nil)
	require.NoError(t, err)

	var out struct {
		Paged string `json:"paged"`
	}
	require.NoError(t, resp.JSON(&out))
	require.Equal(t, "7", out.Paged)
}

func TestSession_TransportErrorAfterRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var retried int32
	opts := testOptions(server.URL)
	opts.OnRetry = func(*http.Request, int) { atomic.AddInt32(&retried, 1) }

	sess, err := New(opts)
	require.NoError(t, err)

	_, err = sess.Get(context.Background(), server.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrTransport))
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))
	require.EqualValues(t, 2, atomic.LoadInt32(&retried))
}

func TestSession_RetriesHungAttempt(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			select {
			case <-time.After(600 * time.Millisecond):
			case <-r.Context().Done():
			}
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	opts := testOptions(server.URL)
	opts.Timeout = 200 * time.Millisecond

	sess, err := New(opts)
	require.NoError(t, err)

	resp, err := sess.Get(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", string(resp.Body))
	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestSession_HungEveryAttemptIsTransportError(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	opts := testOptions(server.URL)
	opts.Timeout = 50 * time.Millisecond

	sess, err := New(opts)
	require.NoError(t, err)

	_, err = sess.Get(context.Background(), server.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrTransport))
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestSession_Resolve(t *testing.T) {
	sess, err := New(testOptions("https://shop.test/"))
	require.NoError(t, err)

	require.Equal(t, "https://shop.test/wp-admin/admin-ajax.php", sess.Resolve("/wp-admin/admin-ajax.php"))
	require.Equal(t, "https://cdn.test/x.jpg", sess.Resolve("https://cdn.test/x.jpg"))
}

func TestSession_DocumentParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1 class="product_title"> Lamp </h1></body></html>`))
	}))
	defer server.Close()

	sess, err := New(testOptions(server.URL))
	require.NoError(t, err)

	doc, err := sess.GetDocument(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, " Lamp ", doc.Find("h1.product_title").Text())
}
