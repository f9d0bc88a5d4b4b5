package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/law-makers/catalogsync/internal/auth"
	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/metrics"
	"github.com/law-makers/catalogsync/internal/retry"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

const productTemplate = `<html><body>
<nav class="woocommerce-breadcrumb"><a class="breadcrumb-link" href="/">Home</a><a class="breadcrumb-link" href="/c/">Lamps</a></nav>
<h1 class="product_title">Lumo %[1]s</h1>
<div class="sku-single">SKU-%[1]s</div>
<figure class="woocommerce-product-gallery__image"><a href="/img/%[1]s.jpg"></a></figure>
%[2]s
<div class="detailed-info-stock"><div class="wpb_wrapper">%[3]s</div></div>
<div class="quantity"><input class="input-text" max="3"></div>
</body></html>`

// shop serves a login form, a menu with a counted section and a bestseller
// section, and five products: p1..p3 are fine, p4 is backordered, p5 has no
// price. p1 is listed in both sections.
func shop(t *testing.T) *httptest.Server {
	t.Helper()
	products := map[string][2]string{
		"p1": {`<p class="price"><span class="woocommerce-Price-amount">10,00 €</span></p>`, "Available"},
		"p2": {`<p class="price"><span class="woocommerce-Price-amount">1.234,56 €</span></p>`, "Limited stock"},
		"p3": {`<p class="price"><span class="woocommerce-Price-amount">5,00 €</span></p>`, "Sold out"},
		"p4": {`<p class="price"><span class="woocommerce-Price-amount">5,00 €</span></p>`, "Backordered"},
		"p5": {``, "Available"},
	}
	card := func(id string) string {
		return fmt.Sprintf(`<div class="product-element-top"><a href="/product/%s/">x</a></div>`, id)
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/account/" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<input id="woocommerce-login-nonce" name="woocommerce-login-nonce" value="abc">`)
		case path == "/account/":
			r.ParseForm()
			if r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "wordpress_logged_in", Value: "1", Path: "/"})
		case path == "/":
			fmt.Fprint(w, `<ul id="menu-desktop-horizontal-menu">
				<li class="item-level-0"><a href="/product-category/lamps/">Lamps</a></li>
				<li class="item-level-0"><a href="/bestsellers/">Best</a></li>
				<li class="item-level-0"><a href="/contact/">Contact</a></li>
			</ul>`)
		case path == "/product-category/lamps/":
			fmt.Fprint(w, `<p class="woocommerce-result-count">Showing 1–24 of 30 results</p>`)
		case path == "/product-category/lamps/page/1":
			fmt.Fprint(w, card("p1")+card("p2")+card("p3"))
		case path == "/product-category/lamps/page/2":
			fmt.Fprint(w, card("p4"))
		case path == "/bestsellers/":
			if r.URL.Query().Get("product-page") == "" {
				fmt.Fprint(w, `<div>no widget</div>`)
				return
			}
			fmt.Fprint(w, card("p1")+card("p5"))
		case strings.HasPrefix(path, "/product/"):
			if _, err := r.Cookie("wordpress_logged_in"); err != nil {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			id := strings.Trim(strings.TrimPrefix(path, "/product/"), "/")
			p, ok := products[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprintf(w, productTemplate, id, p[0], p[1])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newCatalog(t *testing.T, baseURL, password string, m *metrics.Metrics) *Catalog {
	t.Helper()
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	sess, err := session.New(session.Options{BaseURL: baseURL, Retry: cfg, Timeout: 5 * time.Second})
	require.NoError(t, err)

	return New(sess, Options{
		Credentials: auth.Credentials{Login: "buyer", Password: password},
		Workers:     3,
		Metrics:     m,
	})
}

func TestRun_PartialFailures(t *testing.T) {
	server := shop(t)
	defer server.Close()

	m := metrics.New()
	var total, done int
	c := newCatalog(t, server.URL, "secret", m)
	c.opts.OnURLs = func(n int) { total = n }
	c.opts.OnProduct = func() { done++ }

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Sections, 2)
	require.Equal(t, 5, result.Summary.ProductURLs)
	require.Equal(t, 3, result.Summary.Parsed)
	require.Equal(t, 1, result.Summary.Skipped[models.SkipUnrecognizedAvailability])
	require.Equal(t, 1, result.Summary.Skipped[models.SkipPageFormat])
	require.Equal(t, 0, result.Summary.Skipped[models.SkipOther])
	require.NotEmpty(t, result.Summary.RunID)
	require.Equal(t, 5, total)
	require.Equal(t, 5, done)

	byArticle := map[string]*models.ProductRecord{}
	for _, r := range result.Records {
		byArticle[r.Article] = r
	}
	require.Len(t, byArticle, 3)
	require.Equal(t, "lamps", byArticle["SKU-p1"].Category)
	require.Equal(t, 3, byArticle["SKU-p1"].InStock)
	require.InDelta(t, 1234.56, byArticle["SKU-p2"].Price, 1e-9)
	require.False(t, byArticle["SKU-p3"].IsAvailable)
	require.Equal(t, 0, byArticle["SKU-p3"].InStock)
}

func TestRun_Idempotent(t *testing.T) {
	server := shop(t)
	defer server.Close()

	articles := func() []string {
		result, err := newCatalog(t, server.URL, "secret", nil).Run(context.Background())
		require.NoError(t, err)
		var out []string
		for _, r := range result.Records {
			out = append(out, r.Article+"@"+r.Category)
		}
		sort.Strings(out)
		return out
	}

	require.Equal(t, articles(), articles())
}

func TestRun_InvalidCredentialsAborts(t *testing.T) {
	server := shop(t)
	defer server.Close()

	_, err := newCatalog(t, server.URL, "wrong", nil).Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrInvalidCredentials))
	require.True(t, engine.IsFatal(err))
}

func TestRun_SectionTransportFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<ul id="menu-desktop-horizontal-menu">
				<li class="item-level-0"><a href="/broken/">Broken</a></li>
				<li class="item-level-0"><a href="/contact/">Contact</a></li>
			</ul>`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	c := newCatalog(t, server.URL, "secret", nil)
	c.opts.SkipLogin = true

	_, err := c.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrTransport))
}

func TestClassify(t *testing.T) {
	require.Equal(t, models.SkipPageFormat, classify(&engine.FieldError{Field: "price"}))
	require.Equal(t, models.SkipOther, classify(errors.New("connection reset")))
}

func TestRun_ProductTransportFailureFailsRunAfterDrain(t *testing.T) {
	var fetched atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<ul id="menu-desktop-horizontal-menu">
				<li class="item-level-0"><a href="/bestsellers/">Best</a></li>
				<li class="item-level-0"><a href="/contact/">Contact</a></li>
			</ul>`)
		case "/bestsellers/":
			fmt.Fprint(w, `<div class="product-element-top"><a href="/product/down/">x</a></div>
				<div class="product-element-top"><a href="/product/ok/">x</a></div>`)
		case "/product/down/":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			fetched.Add(1)
			fmt.Fprintf(w, productTemplate, "ok", `<p class="price"><span class="woocommerce-Price-amount">1,00 €</span></p>`, "Available")
		}
	}))
	defer server.Close()

	c := newCatalog(t, server.URL, "secret", nil)
	c.opts.SkipLogin = true

	_, err := c.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrTransport))
	require.Equal(t, int32(1), fetched.Load())
}
