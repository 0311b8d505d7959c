package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v63/github"
)

func TestWrapRemote(t *testing.T) {
	tests := []struct {
		name       string
		input      error
		wantStatus int
		wantConn   bool
	}{
		{
			name: "error response carries status and message",
			input: &github.ErrorResponse{
				Response: &http.Response{StatusCode: 422},
				Message:  "Validation Failed",
			},
			wantStatus: 422,
		},
		{
			name:       "rate limit maps to 403",
			input:      &github.RateLimitError{},
			wantStatus: 403,
		},
		{
			name:       "abuse rate limit maps to 403",
			input:      &github.AbuseRateLimitError{},
			wantStatus: 403,
		},
		{
			name:     "url error is connectivity",
			input:    &url.Error{Op: "Get", URL: "https://api.github.com/", Err: errors.New("refused")},
			wantConn: true,
		},
		{
			name:     "deadline is connectivity",
			input:    fmt.Errorf("request: %w", context.DeadlineExceeded),
			wantConn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapRemote(tt.input)

			if tt.wantConn {
				var connErr *ConnectivityError
				if !errors.As(wrapped, &connErr) {
					t.Fatalf("wrapRemote() = %v, want ConnectivityError", wrapped)
				}
				return
			}

			var rejection *RemoteRejectionError
			if !errors.As(wrapped, &rejection) {
				t.Fatalf("wrapRemote() = %v, want RemoteRejectionError", wrapped)
			}
			if rejection.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", rejection.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestWrapRemoteNil(t *testing.T) {
	if wrapRemote(nil) != nil {
		t.Error("wrapRemote(nil) should be nil")
	}
}

func TestRemoteRejectionMessage(t *testing.T) {
	err := &RemoteRejectionError{StatusCode: 422, Message: "Validation Failed"}
	want := "GitHub rejected the request (HTTP 422): Validation Failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := &RemoteRejectionError{StatusCode: 500}
	if bare.Error() != "GitHub rejected the request (HTTP 500)" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &RemoteRejectionError{StatusCode: 404}
	if !IsNotFound(notFound) {
		t.Error("IsNotFound() = false for 404")
	}
	if IsNotFound(&RemoteRejectionError{StatusCode: 403}) {
		t.Error("IsNotFound() = true for 403")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound() = true for a plain error")
	}
	if IsNotFound(nil) {
		t.Error("IsNotFound(nil) = true")
	}
}

func TestTestConnection(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user" {
			authHeader = r.Header.Get("Authorization")
			writeJSON(w, 200, map[string]interface{}{"login": "octocat"})
			return
		}
		writeJSON(w, 404, map[string]string{"message": "Not Found"})
	}))
	defer server.Close()

	client, err := NewClient(Options{
		BaseURL:  server.URL + "/",
		Token:    "test-token",
		Username: "octocat",
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	login, err := client.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection() error: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %s, want octocat", login)
	}
	// The connection test authenticates with basic auth
	if len(authHeader) == 0 || authHeader[:5] != "Basic" {
		t.Errorf("auth header = %q, want basic auth", authHeader)
	}
}

func TestTestConnectionBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]string{"message": "Bad credentials"})
	}))
	defer server.Close()

	client, err := NewClient(Options{
		BaseURL:  server.URL + "/",
		Token:    "wrong",
		Username: "octocat",
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	_, err = client.TestConnection(context.Background())
	var rejection *RemoteRejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("TestConnection() error = %v, want RemoteRejectionError", err)
	}
	if rejection.StatusCode != 401 {
		t.Errorf("status = %d, want 401", rejection.StatusCode)
	}
	if rejection.Message != "Bad credentials" {
		t.Errorf("message = %q, want the remote text", rejection.Message)
	}
}

func TestTestConnectionRequiresUsername(t *testing.T) {
	client, err := NewClient(Options{Token: "t"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	_, err = client.TestConnection(context.Background())
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("TestConnection() error = %v, want ConfigurationError", err)
	}
}
