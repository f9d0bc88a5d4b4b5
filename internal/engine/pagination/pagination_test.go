package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/retry"
	"github.com/law-makers/catalogsync/internal/session"
	"github.com/law-makers/catalogsync/pkg/models"
)

func newSession(t *testing.T, baseURL string) *session.Session {
	t.Helper()
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	sess, err := session.New(session.Options{BaseURL: baseURL, Retry: cfg, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return sess
}

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func card(href string) string {
	return fmt.Sprintf(`<div class="product-element-top"><a href="%s">img</a><a href="/other">x</a></div>`, href)
}

func TestParseResultCount(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"Showing 1–24 of 50 results", 50, true},
		{"  Showing 25–48 of 1.024 results\n", 1024, true},
		{"Showing all 7 results", 7, true},
		{"Showing the single result", 1, true},
		{"No products were found", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseResultCount(tt.text)
		require.Equal(t, tt.ok, ok, tt.text)
		require.Equal(t, tt.want, got, tt.text)
	}
}

func TestPageCount(t *testing.T) {
	require.Equal(t, 3, PageCount(50, 24))
	require.Equal(t, 2, PageCount(48, 24))
	require.Equal(t, 1, PageCount(1, 24))
	require.Equal(t, 0, PageCount(0, 24))
}

func TestMaxPage(t *testing.T) {
	widget := `<ul class="page-numbers"><li>1</li><li>2</li><li>7</li><li>→</li></ul>`
	require.Equal(t, 7, MaxPage(doc(t, widget)))
	require.Equal(t, 1, MaxPage(doc(t, `<div>no widget</div>`)))
}

func TestResolverSelect(t *testing.T) {
	r := NewResolverWith(nil, &Counted{ItemsPerPage: 24}, &Numbered{}, &InfiniteScroll{})
	counted := doc(t, `<p class="woocommerce-result-count">Showing 1–24 of 50 results</p>`)
	plain := doc(t, `<p>nothing</p>`)

	require.Equal(t, "counted", r.Select(models.Section{Kind: models.KindBestsellers}, counted).Name())
	require.Equal(t, "numbered", r.Select(models.Section{Kind: models.KindBestsellers}, plain).Name())
	require.Equal(t, "infinite-scroll", r.Select(models.Section{Kind: models.KindNew}, plain).Name())
	require.Equal(t, "infinite-scroll", r.Select(models.Section{Kind: models.KindOnSale}, plain).Name())
	require.Nil(t, r.Select(models.Section{Kind: models.KindGeneric}, plain))
}

func TestCounted_FetchesEveryPage(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/product-category/lamps/":
			fmt.Fprint(w, `<p class="woocommerce-result-count">Showing 1–24 of 50 results</p>`)
		case strings.HasPrefix(r.URL.Path, "/product-category/lamps/page/"):
			n := strings.TrimPrefix(r.URL.Path, "/product-category/lamps/page/")
			pages = append(pages, n)
			// page 2 repeats a product from page 1
			fmt.Fprint(w, card("/p/"+n)+card("/p/shared"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sess := newSession(t, server.URL)
	section := models.Section{URL: server.URL + "/product-category/lamps/", Slug: "lamps", Kind: models.KindGeneric}

	urls, name, err := NewResolver(sess, Options{}).Enumerate(context.Background(), section)
	require.NoError(t, err)
	require.Equal(t, "counted", name)
	require.Equal(t, []string{"1", "2", "3"}, pages)
	require.Equal(t, []string{
		server.URL + "/p/1",
		server.URL + "/p/shared",
		server.URL + "/p/2",
		server.URL + "/p/3",
	}, urls)
}

func TestNumbered_UsesProductPageQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("product-page")
		if page == "" {
			fmt.Fprint(w, `<ul class="page-numbers"><li>1</li><li>2</li><li>next</li></ul>`)
			return
		}
		fmt.Fprint(w, card("/best/"+page))
	}))
	defer server.Close()

	sess := newSession(t, server.URL)
	section := models.Section{URL: server.URL + "/bestsellers/", Slug: "bestsellers", Kind: models.KindBestsellers}

	urls, name, err := NewResolver(sess, Options{}).Enumerate(context.Background(), section)
	require.NoError(t, err)
	require.Equal(t, "numbered", name)
	require.Equal(t, []string{server.URL + "/best/1", server.URL + "/best/2"}, urls)
}

func ajaxServer(t *testing.T, lastPage int, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<div>grid</div>`)
			return
		}
		atomic.AddInt32(hits, 1)
		if err := r.ParseForm(); err != nil ||
			r.PostForm.Get("action") != "woodmart_get_products_shortcode" ||
			r.PostForm.Get("woo_ajax") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		page, _ := strconv.Atoi(r.PostForm.Get("paged"))
		w.Header().Set("Content-Type", "application/json")
		if page >= lastPage {
			fmt.Fprint(w, `{"status":"no-more-posts","items":""}`)
			return
		}
		postType := r.PostForm.Get("atts[post_type]")
		items := fmt.Sprintf(`<a class="product-image-link" href="/%s/%d"></a>`, postType, page)
		fmt.Fprintf(w, `{"status":"have-posts","items":%q}`, items)
	}))
}

func TestInfiniteScroll_StopsAtSentinel(t *testing.T) {
	var hits int32
	server := ajaxServer(t, 4, &hits)
	defer server.Close()

	sess := newSession(t, server.URL)
	section := models.Section{URL: server.URL + "/product-on-sale/", Slug: "product-on-sale", Kind: models.KindOnSale}

	urls, name, err := NewResolver(sess, Options{}).Enumerate(context.Background(), section)
	require.NoError(t, err)
	require.Equal(t, "infinite-scroll", name)
	require.Equal(t, []string{
		server.URL + "/sale/1",
		server.URL + "/sale/2",
		server.URL + "/sale/3",
	}, urls)
	require.EqualValues(t, 4, hits)
}

func TestInfiniteScroll_PageCap(t *testing.T) {
	var hits int32
	server := ajaxServer(t, 1000, &hits)
	defer server.Close()

	sess := newSession(t, server.URL)
	section := models.Section{URL: server.URL + "/new/", Slug: "new", Kind: models.KindNew}

	_, _, err := NewResolver(sess, Options{MaxAjaxPages: 5}).Enumerate(context.Background(), section)
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrPaginationRunaway))
	require.EqualValues(t, 5, hits)
}

func TestResolver_SkipsUnmatchedSection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div>brand landing page</div>`)
	}))
	defer server.Close()

	urls, name, err := NewResolver(newSession(t, server.URL), Options{}).
		Enumerate(context.Background(), models.Section{URL: server.URL + "/brands/", Kind: models.KindGeneric})
	require.NoError(t, err)
	require.Empty(t, name)
	require.Empty(t, urls)
}

func TestAjaxForm(t *testing.T) {
	form := AjaxForm("sale", 3)
	require.Equal(t, "sale", form.Get("atts[post_type]"))
	require.Equal(t, "product", form.Get("atts[query_post_type]"))
	require.Equal(t, "3", form.Get("paged"))
	require.Equal(t, "woodmart_get_products_shortcode", form.Get("action"))
	require.Equal(t, "product", PostType(models.KindNew))
}

func TestURLSet(t *testing.T) {
	s := NewURLSet()
	require.Equal(t, 2, s.AddAll([]string{"a", "b", "a", ""}))
	require.False(t, s.Add("b"))
	require.True(t, s.Add("c"))
	require.True(t, s.Contains("a"))
	require.Equal(t, []string{"a", "b", "c"}, s.Items())
	require.Equal(t, 3, s.Len())
}
