package identity

import (
	"os"
	"path/filepath"
	"strings"

	serrors "strongbox/internal/errors"
	"strongbox/pkg/crypto"
)

// File-based loading of key and certificate material. The storage format is
// deliberately minimal: raw binary key bytes, one file per artifact.
//
//	<name>.key  Ed25519 private key (64 bytes, mode 0600)
//	<name>.pub  Ed25519 public key (32 bytes)
//	<name>.crt  certificate in wire encoding

// SaveKeyPair writes a key pair to dir as <name>.key and <name>.pub.
func SaveKeyPair(dir, name string, pub crypto.VerifyKey, priv crypto.SigningKey) error {
	if err := os.WriteFile(filepath.Join(dir, name+".key"), priv, 0o600); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+".pub"), pub, 0o644)
}

// LoadSigningKey reads <name>.key from dir.
func LoadSigningKey(dir, name string) (crypto.SigningKey, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".key"))
	if err != nil {
		return nil, err
	}
	return crypto.ParseSigningKey(data)
}

// LoadVerifyKey reads <name>.pub from dir.
func LoadVerifyKey(dir, name string) (crypto.VerifyKey, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".pub"))
	if err != nil {
		return nil, err
	}
	return crypto.ParseVerifyKey(data)
}

// SaveCertificate writes a certificate to dir as <name>.crt.
func SaveCertificate(dir string, cert *Certificate) error {
	return os.WriteFile(filepath.Join(dir, cert.Name+".crt"), cert.Marshal(), 0o644)
}

// LoadCertificate reads <name>.crt from dir.
func LoadCertificate(dir, name string) (*Certificate, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".crt"))
	if err != nil {
		return nil, err
	}
	return ParseCertificate(data)
}

// LoadRegistry builds a registry from every *.pub file in dir, keyed by the
// file's base name. Returns an error if dir contains no public keys, since
// a server with an empty registry can never authenticate anyone.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]crypto.VerifyKey)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pub") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".pub")
		key, err := LoadVerifyKey(dir, name)
		if err != nil {
			return nil, err
		}
		keys[name] = key
	}

	if len(keys) == 0 {
		return nil, serrors.ErrUnknownUser
	}
	return NewRegistry(keys), nil
}
