package oauth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestGeneratePKCE(t *testing.T) {
	pkce, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE failed: %v", err)
	}

	if len(pkce.CodeVerifier) < 43 {
		t.Errorf("code verifier too short: %d chars, RFC 7636 requires at least 43", len(pkce.CodeVerifier))
	}

	if pkce.CodeChallengeMethod != "S256" {
		t.Errorf("expected method S256, got %q", pkce.CodeChallengeMethod)
	}

	// The challenge must be the base64url-no-pad SHA256 of the verifier's
	// ASCII bytes.
	hash := sha256.Sum256([]byte(pkce.CodeVerifier))
	expected := base64.RawURLEncoding.EncodeToString(hash[:])
	if pkce.CodeChallenge != expected {
		t.Errorf("challenge mismatch: got %q, want %q", pkce.CodeChallenge, expected)
	}
}

func TestGeneratePKCE_Unique(t *testing.T) {
	first, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE failed: %v", err)
	}
	second, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE failed: %v", err)
	}

	if first.CodeVerifier == second.CodeVerifier {
		t.Error("expected unique verifiers across generations")
	}
}

func TestGeneratePKCE_VerifierIsURLSafe(t *testing.T) {
	pkce, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE failed: %v", err)
	}

	if _, err := base64.RawURLEncoding.DecodeString(pkce.CodeVerifier); err != nil {
		t.Errorf("verifier is not base64url: %v", err)
	}
	if _, err := base64.RawURLEncoding.DecodeString(pkce.CodeChallenge); err != nil {
		t.Errorf("challenge is not base64url: %v", err)
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}

	if len(state) < 32 {
		t.Errorf("state too short: %d chars", len(state))
	}

	other, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}
	if state == other {
		t.Error("expected unique state tokens across generations")
	}
}
