package auth_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/auth"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned an error: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals the plaintext")
	}

	if err := auth.ComparePassword(hash, "hunter22"); err != nil {
		t.Errorf("ComparePassword with correct password: %v", err)
	}
	if err := auth.ComparePassword(hash, "wrong"); err == nil {
		t.Error("ComparePassword accepted a wrong password")
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	first, err := auth.HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned an error: %v", err)
	}
	second, err := auth.HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned an error: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical, want salted digests")
	}
}
