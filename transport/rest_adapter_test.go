package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-carrier-sync/core"
)

func TestRESTAdapterSendsBasicAuthAndHeaders(t *testing.T) {
	var gotAuth string
	var gotContentType string
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"responses":[]}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodPost,
		URL:    server.URL + "/composite/v1/composite",
		Body:   []byte(`{"requests":[]}`),
		Auth:   core.BasicAuth{Username: "su", Password: "gw"},
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if gotBody != `{"requests":[]}` {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestRESTAdapterConnectionErrorIsExternal(t *testing.T) {
	adapter := NewRESTAdapter(&http.Client{Timeout: time.Second})

	_, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodGet,
		URL:    "http://127.0.0.1:1/unreachable",
	})
	if err == nil {
		t.Fatalf("expected error for unreachable host")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("category = %v, want external", rich.Category)
	}
	if rich.TextCode != core.ErrorCodeTransport {
		t.Fatalf("text code = %q", rich.TextCode)
	}
	if !core.IsTransient(err) {
		t.Fatalf("transport failure should be transient")
	}
}

func TestRESTAdapterNonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad payload"}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodPost,
		URL:    server.URL,
	})
	if err != nil {
		t.Fatalf("status codes are for the caller to interpret: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestRESTAdapterBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	_, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:                  server.URL,
		MaxResponseBodyBytes: 16,
	})
	if err == nil {
		t.Fatalf("expected body limit error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %v", err)
	}
}

func TestRESTAdapterInvalidURL(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: "://bad"})
	if err == nil {
		t.Fatalf("expected error for invalid url")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %v", err)
	}
	if core.IsTransient(err) {
		t.Fatalf("bad input must not be transient")
	}
}

func TestRESTAdapterQueryMerge(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	_, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:   server.URL + "?existing=1",
		Query: map[string]string{"accountNumber": "2332505940"},
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if !strings.Contains(gotQuery, "existing=1") || !strings.Contains(gotQuery, "accountNumber=2332505940") {
		t.Fatalf("query = %q", gotQuery)
	}
}
