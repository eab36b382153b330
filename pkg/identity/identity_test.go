package identity_test

import (
	"errors"
	"testing"

	serrors "strongbox/internal/errors"
	"strongbox/pkg/crypto"
	"strongbox/pkg/identity"
)

func TestCertificateRoundTrip(t *testing.T) {
	subjectPub, _, err := crypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey failed: %v", err)
	}
	issuerPub, issuerPriv, _ := crypto.GenerateSigningKey()

	cert, err := identity.IssueCertificate("server", subjectPub, issuerPriv)
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}

	parsed, err := identity.ParseCertificate(cert.Marshal())
	if err != nil {
		t.Fatalf("ParseCertificate failed: %v", err)
	}
	if parsed.Name != "server" {
		t.Errorf("name: got %q, want %q", parsed.Name, "server")
	}
	if err := parsed.Verify(issuerPub); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestCertificateVerifyRejectsWrongIssuer(t *testing.T) {
	subjectPub, _, _ := crypto.GenerateSigningKey()
	_, issuerPriv, _ := crypto.GenerateSigningKey()
	otherPub, _, _ := crypto.GenerateSigningKey()

	cert, _ := identity.IssueCertificate("server", subjectPub, issuerPriv)

	if err := cert.Verify(otherPub); !errors.Is(err, serrors.ErrInvalidCertificate) {
		t.Errorf("got %v, want ErrInvalidCertificate", err)
	}
}

func TestParseCertificateRejectsTampering(t *testing.T) {
	subjectPub, _, _ := crypto.GenerateSigningKey()
	issuerPub, issuerPriv, _ := crypto.GenerateSigningKey()
	cert, _ := identity.IssueCertificate("server", subjectPub, issuerPriv)
	raw := cert.Marshal()

	// Flip a bit in the embedded public key; the parse succeeds but the
	// signature no longer verifies.
	tampered := append([]byte(nil), raw...)
	tampered[len(tampered)-70] ^= 0x01
	parsed, err := identity.ParseCertificate(tampered)
	if err == nil {
		if verr := parsed.Verify(issuerPub); !errors.Is(verr, serrors.ErrInvalidCertificate) {
			t.Errorf("tampered certificate verified: %v", verr)
		}
	}
}

func TestParseCertificateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{0x00}},
		{"zero name length", []byte{0x00, 0x00, 0x01}},
		{"truncated body", []byte{0x00, 0x06, 's', 'e', 'r', 'v', 'e', 'r'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := identity.ParseCertificate(tt.data); !errors.Is(err, serrors.ErrInvalidCertificate) {
				t.Errorf("got %v, want ErrInvalidCertificate", err)
			}
		})
	}
}

func TestNewLocalValidatesInputs(t *testing.T) {
	_, priv, _ := crypto.GenerateSigningKey()

	if _, err := identity.NewLocal("", priv, nil); err == nil {
		t.Error("empty name accepted")
	}
	longName := string(make([]byte, 64))
	if _, err := identity.NewLocal(longName, priv, nil); err == nil {
		t.Error("oversized name accepted")
	}
	if _, err := identity.NewLocal("alice", priv[:16], nil); err == nil {
		t.Error("truncated key accepted")
	}

	local, err := identity.NewLocal("alice", priv, nil)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	if local.Name() != "alice" {
		t.Errorf("Name() = %q, want %q", local.Name(), "alice")
	}
}

func TestRegistryLookup(t *testing.T) {
	alicePub, _, _ := crypto.GenerateSigningKey()
	bobPub, _, _ := crypto.GenerateSigningKey()

	source := map[string]crypto.VerifyKey{"alice": alicePub, "bob": bobPub}
	registry := identity.NewRegistry(source)

	// The registry must not observe later mutation of the source map.
	delete(source, "alice")

	if _, ok := registry.Lookup("alice"); !ok {
		t.Error("alice not found")
	}
	if _, ok := registry.Lookup("mallory"); ok {
		t.Error("unregistered user found")
	}
	if registry.Len() != 2 {
		t.Errorf("Len() = %d, want 2", registry.Len())
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Names() = %v, want [alice bob]", names)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pub, priv, _ := crypto.GenerateSigningKey()

	if err := identity.SaveKeyPair(dir, "alice", pub, priv); err != nil {
		t.Fatalf("SaveKeyPair failed: %v", err)
	}

	loadedPriv, err := identity.LoadSigningKey(dir, "alice")
	if err != nil {
		t.Fatalf("LoadSigningKey failed: %v", err)
	}
	if !crypto.ConstantTimeCompare(loadedPriv, priv) {
		t.Error("private key mismatch after reload")
	}

	loadedPub, err := identity.LoadVerifyKey(dir, "alice")
	if err != nil {
		t.Fatalf("LoadVerifyKey failed: %v", err)
	}
	if !crypto.ConstantTimeCompare(loadedPub, pub) {
		t.Error("public key mismatch after reload")
	}

	_, issuerPriv, _ := crypto.GenerateSigningKey()
	cert, _ := identity.IssueCertificate("alice", pub, issuerPriv)
	if err := identity.SaveCertificate(dir, cert); err != nil {
		t.Fatalf("SaveCertificate failed: %v", err)
	}
	loadedCert, err := identity.LoadCertificate(dir, "alice")
	if err != nil {
		t.Fatalf("LoadCertificate failed: %v", err)
	}
	if loadedCert.Name != "alice" {
		t.Errorf("certificate name: got %q, want %q", loadedCert.Name, "alice")
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()

	if _, err := identity.LoadRegistry(dir); err == nil {
		t.Error("empty directory accepted")
	}

	alicePub, alicePriv, _ := crypto.GenerateSigningKey()
	bobPub, bobPriv, _ := crypto.GenerateSigningKey()
	identity.SaveKeyPair(dir, "alice", alicePub, alicePriv)
	identity.SaveKeyPair(dir, "bob", bobPub, bobPriv)

	registry, err := identity.LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if registry.Len() != 2 {
		t.Errorf("Len() = %d, want 2", registry.Len())
	}
	key, ok := registry.Lookup("alice")
	if !ok {
		t.Fatal("alice not in registry")
	}
	if !crypto.ConstantTimeCompare(key, alicePub) {
		t.Error("registry key mismatch")
	}
}
