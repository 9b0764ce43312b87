package auth

import (
	"testing"
)

func TestPasswordHashAndVerify(t *testing.T) {
	// Use deterministic salt for reproducible tests
	salt := []byte("proxysalt1234567")
	password := "correct-secret"
	// use a small cost so tests run fast (scrypt N = 1<<cost)
	cost := 10

	hash, err := PasswordHash(password, salt, cost)
	if err != nil {
		t.Fatalf("PasswordHash returned error: %v", err)
	}

	if hash == "" {
		t.Fatalf("PasswordHash returned empty hash")
	}

	ok, err := PasswordVerify(hash, password)
	if err != nil {
		t.Fatalf("PasswordVerify returned unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("PasswordVerify failed for correct password")
	}

	ok, err = PasswordVerify(hash, "wrong-secret")
	if err != nil {
		t.Fatalf("PasswordVerify returned unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("PasswordVerify accepted wrong password")
	}
}

func TestPasswordVerifyMalformedHash(t *testing.T) {
	hashes := []string{
		"not-a-valid-hash",
		"$8$10$c2FsdA==$aGFzaA==",  // unknown version
		"$7$ten$c2FsdA==$aGFzaA==", // non-numeric cost
		"$7$-1$c2FsdA==$aGFzaA==",  // negative cost must not reach the shift
		"$7$0$c2FsdA==$aGFzaA==",   // zero cost
		"$7$32$c2FsdA==$aGFzaA==",  // cost over the shift range
		"$7$10$!!!$aGFzaA==",       // salt is not base64
	}

	for _, hash := range hashes {
		if _, err := PasswordVerify(hash, "password"); err == nil {
			t.Fatalf("PasswordVerify expected error for malformed hash %q, got nil", hash)
		}
	}
}
