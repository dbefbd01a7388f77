package auth

import (
	"net/http"
	"testing"
	"time"
)

func TestGenerateVerify(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.Subject)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Fatal("token signed with another secret verified")
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	if _, err := m.Verify("not.a.token"); err == nil {
		t.Fatal("garbage token verified")
	}
}

func TestExpiry(t *testing.T) {
	ttl := 2 * time.Hour
	m := NewJWTManager("test-secret", ttl)

	token, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	exp, err := m.Expiry(token)
	if err != nil {
		t.Fatalf("Expiry: %v", err)
	}

	want := time.Now().Add(ttl)
	if diff := exp.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry = %v, want about %v", exp, want)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := ExtractTokenFromHeader(req)
	if err != nil {
		t.Fatalf("ExtractTokenFromHeader: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("token = %q", token)
	}

	for _, hdr := range []string{"", "abc.def.ghi", "Basic abc"} {
		req.Header.Set("Authorization", hdr)
		if _, err := ExtractTokenFromHeader(req); err == nil {
			t.Errorf("header %q accepted", hdr)
		}
	}
}
