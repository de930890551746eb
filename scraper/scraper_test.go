package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

const productPage = `<!DOCTYPE html>
<html>
<head>
<title>Bolinha de Borracha para Cães</title>
<meta property="og:title" content="Bolinha de Borracha para Cães">
</head>
<body>
<article>
<h1>Bolinha de Borracha para Cães</h1>
<p>Brinquedo resistente para cães de pequeno e médio porte, ideal para brincadeiras diárias.</p>
<p>Material atóxico e fácil de limpar.</p>
</article>
</body>
</html>`

func TestTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	s := NewScraper(WithTimeout(5 * time.Second))

	title, err := s.Title(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Title failed: %v", err)
	}
	if !strings.Contains(title, "Bolinha de Borracha") {
		t.Errorf("title = %q, want product name", title)
	}
}

func TestTitleFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/product/1", http.StatusFound)
	})
	mux.HandleFunc("/product/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(productPage))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	title, err := NewScraper().Title(context.Background(), server.URL+"/short")
	if err != nil {
		t.Fatalf("Title failed: %v", err)
	}
	if !strings.Contains(title, "Bolinha") {
		t.Errorf("title = %q", title)
	}
}

func TestTitleLengthLimit(t *testing.T) {
	long := strings.Repeat("ração ", 100)
	page := `<html><head><title>` + long + `</title><meta property="og:title" content="` + long + `"></head><body><p>` + long + `</p></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	s := NewScraper(WithMaxTitleLength(30))
	title, err := s.Title(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Title failed: %v", err)
	}
	if n := utf8.RuneCountInString(title); n > 31 {
		t.Errorf("title length = %d, want <= 31", n)
	}
}

func TestTitleServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewScraper().Title(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for server error response")
	}
}

func TestTitleMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(""))
	}))
	defer server.Close()

	_, err := NewScraper().Title(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for page without title")
	}
}

func TestTitleContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScraper().Title(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestTitleInvalidURL(t *testing.T) {
	_, err := NewScraper().Title(context.Background(), "not-a-valid-url")
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestDefaultScraper(t *testing.T) {
	s := NewScraper()
	if s.maxTitleLen != 120 {
		t.Errorf("default maxTitleLen = %d, want 120", s.maxTitleLen)
	}
}
