package crypto_test

import (
	"bytes"
	"testing"

	"strongbox/pkg/crypto"
)

func TestSecureRandomBytes(t *testing.T) {
	a, err := crypto.SecureRandomBytes(32)
	if err != nil {
		t.Fatalf("SecureRandomBytes failed: %v", err)
	}
	b, _ := crypto.SecureRandomBytes(32)

	if len(a) != 32 {
		t.Errorf("length: got %d, want 32", len(a))
	}
	if bytes.Equal(a, b) {
		t.Error("two random draws are identical")
	}
}

func TestConstantTimeCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want bool
	}{
		{"equal", []byte("secret"), []byte("secret"), true},
		{"different", []byte("secret"), []byte("secreT"), false},
		{"different lengths", []byte("secret"), []byte("secrets"), false},
		{"both empty", []byte{}, []byte{}, true},
	}
	for _, tt := range tests {
		if got := crypto.ConstantTimeCompare(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestZeroize(t *testing.T) {
	secret := []byte{1, 2, 3, 4}
	other := []byte{5, 6}
	crypto.ZeroizeMultiple(secret, other)

	for _, b := range append(secret, other...) {
		if b != 0 {
			t.Fatal("data not zeroized")
		}
	}
}
