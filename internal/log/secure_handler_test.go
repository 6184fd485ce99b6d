package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"testing"
)

func TestSecureHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "lgpassword", key: "lgpassword", value: "hunter2", wantMask: true},
		{name: "csrftoken", key: "csrftoken", value: "abc", wantMask: true},
		{name: "login token", key: "logintoken", value: "abc", wantMask: true},
		{name: "cookie header", key: "Cookie", value: "viwikiSession=1", wantMask: true},
		{name: "keyword in key", key: "bot_password", value: "pw", wantMask: true},
		{name: "authorization", key: "authorization", value: "OAuth x", wantMask: true},
		{name: "title is kept", key: "title", value: "Project:Citron/Spam/2025-03-01.json", wantMask: false},
		{name: "action is kept", key: "action", value: "edit", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("api request", tt.key, tt.value)

			out := buf.String()
			if got := strings.Contains(out, MaskValue); got != tt.wantMask {
				t.Errorf("masked=%v, expected %v; output: %s", got, tt.wantMask, out)
			}
			if tt.wantMask && strings.Contains(out, tt.value) {
				t.Errorf("value %q leaked: %s", tt.value, out)
			}
		})
	}
}

func TestSecureHandler_MasksSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{name: "csrf token shape", value: "0123456789abcdef0123456789abcdef01234567+\\", wantMask: true},
		{name: "anonymous token is kept", value: "+\\", wantMask: false},
		{name: "bearer", value: "Bearer abc.def", wantMask: true},
		{name: "basic", value: "Basic dXNlcjpwYXNz", wantMask: true},
		{name: "session cookie", value: "viwikiSession=deadbeef; path=/", wantMask: true},
		{name: "hostname", value: "spam.example", wantMask: false},
		{name: "sha1 hash", value: "a9993e364706816aba3e25717850c26c9cd0d89d", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isSensitiveValue(tt.value); got != tt.wantMask {
				t.Errorf("isSensitiveValue(%q) = %v, expected %v", tt.value, got, tt.wantMask)
			}
		})
	}
}

func TestSecureHandler_Levels(t *testing.T) {
	t.Parallel()

	t.Run("non-verbose drops info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("info logged in non-verbose mode")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn not logged")
		}
	})

	t.Run("verbose logs debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("fetching report")
		if !strings.Contains(buf.String(), "fetching report") {
			t.Error("debug not logged in verbose mode")
		}
	})
}

func TestSecureHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).
		With("lgtoken", "secret-login-token").
		WithGroup("request")
	logger.Info("login", slog.Group("params", slog.String("lgpassword", "pw123")))

	out := buf.String()
	if strings.Contains(out, "secret-login-token") || strings.Contains(out, "pw123") {
		t.Errorf("secret leaked: %s", out)
	}
}

func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, false)
	logger.Warn("save failed", "token", "x", "title", "T")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec["token"] != MaskValue {
		t.Errorf("token = %v, expected mask", rec["token"])
	}
	if rec["title"] != "T" {
		t.Errorf("title = %v", rec["title"])
	}
}

func TestSanitizeValues(t *testing.T) {
	t.Parallel()

	params := url.Values{
		"action":     {"login"},
		"lgname":     {"CitronBot"},
		"lgpassword": {"pw"},
		"lgtoken":    {"tok"},
		"text":       {"0123456789abcdef0123456789abcdef+\\"},
	}
	got := SanitizeValues(params)

	if got.Get("action") != "login" || got.Get("lgname") != "CitronBot" {
		t.Errorf("plain values changed: %v", got)
	}
	for _, key := range []string{"lgpassword", "lgtoken", "text"} {
		if got.Get(key) != MaskValue {
			t.Errorf("%s = %q, expected mask", key, got.Get(key))
		}
	}
	if params.Get("lgpassword") != "pw" {
		t.Error("input was modified")
	}
}

func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewSecureHandler(nil)
	if h.handler == nil {
		t.Error("expected default handler")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	Discard().Error("nothing", "token", "x")
}
