package auth

import "testing"

func TestHashAndVerifyKey(t *testing.T) {
	h, err := HashKey("s3cret", "pepper")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := VerifyKey("s3cret", "pepper", h)
	if err != nil || !ok {
		t.Fatalf("expected valid key: %v", err)
	}
	if ok, _ := VerifyKey("s3cret", "other", h); ok {
		t.Fatalf("pepper must be part of the hash")
	}
	if ok, _ := VerifyKey("wrong", "pepper", h); ok {
		t.Fatalf("expected invalid key")
	}
	if ok, _ := VerifyKey("", "pepper", h); ok {
		t.Fatalf("empty key must not verify")
	}
	again, _ := HashKey("s3cret", "pepper")
	if again.Salt == h.Salt {
		t.Fatalf("expected a fresh salt per hash")
	}
}

func TestParseKeyHash(t *testing.T) {
	if _, err := ParseKeyHash("", "salt"); err == nil {
		t.Fatalf("expected error for empty hash")
	}
	if _, err := HashKey("", "pepper"); err != ErrEmptyKey {
		t.Fatalf("expected empty key error, got %v", err)
	}
	h, err := ParseKeyHash("!!", "!!")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := VerifyKey("x", "", h); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	if err != nil || len(a) == 0 {
		t.Fatalf("generate: %v", err)
	}
	b, _ := GenerateKey()
	if a == b {
		t.Fatalf("expected distinct keys")
	}
}
