package jwt

import (
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "6f1c2a52-1c6f-4f33-9f1a-2f0d4b7c9e11", Username: "steve"}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	payload, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if payload.ID != "6f1c2a52-1c6f-4f33-9f1a-2f0d4b7c9e11" || payload.Username != "steve" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Subject != payload.ID {
		t.Errorf("Subject = %q, want %q", payload.Subject, payload.ID)
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken(&Payload{ID: "x"}, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ParseToken(expired, testSecret); err == nil {
		t.Error("ParseToken() accepted an expired token")
	}

	valid, err := GenerateToken(&Payload{ID: "x"}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ParseToken(valid, "other-secret"); err == nil {
		t.Error("ParseToken() accepted a token signed with another secret")
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := ExtractToken(r); got != "" {
		t.Errorf("ExtractToken() = %q, want empty", got)
	}

	r.Header.Set("Authorization", "Bearer abc")
	if got := ExtractToken(r); got != "abc" {
		t.Errorf("ExtractToken() = %q, want abc", got)
	}

	r.Header.Set(TokenHeader, "from-header")
	if got := ExtractToken(r); got != "from-header" {
		t.Errorf("ExtractToken() = %q, want from-header", got)
	}
}
