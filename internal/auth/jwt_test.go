package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("4237", "timetrack", "secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) < 14*time.Minute {
		t.Errorf("expiry %v too soon", exp)
	}

	claims, err := Parse(token, "secret", "timetrack")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "4237" {
		t.Errorf("subject = %q, want 4237", claims.Subject)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role = %q, want %q", claims.Role, RoleAdmin)
	}
}

func TestParseWrongKey(t *testing.T) {
	token, _, err := Issue("4237", "timetrack", "secret", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(token, "other-secret", "timetrack"); err == nil {
		t.Fatal("token signed with a different key accepted")
	}
}

func TestParseWrongIssuer(t *testing.T) {
	token, _, err := Issue("4237", "someone-else", "secret", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(token, "secret", "timetrack"); err == nil {
		t.Fatal("token from a different issuer accepted")
	}
}

func TestParseExpired(t *testing.T) {
	token, _, err := Issue("4237", "timetrack", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(token, "secret", "timetrack"); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("not.a.token", "secret", "timetrack"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
