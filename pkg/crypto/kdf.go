// kdf.go implements key derivation using SHAKE-256 (FIPS 202).
//
// SHAKE-256 is an extendable-output function based on the Keccak sponge.
// Every input is length-prefixed with a 4-byte big-endian integer so the
// concatenation of inputs parses unambiguously; without the prefixes,
// ("ab","c") and ("a","bc") would derive the same key.
//
// The session key derivation binds both parties' identities and both
// ephemeral public keys so a key derived for (alice, server) can never be
// confused with one derived for any other peer pair.
package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"strongbox/internal/constants"
	serrors "strongbox/internal/errors"
)

// DeriveKey derives keying material using SHAKE-256 with domain separation.
//
// The construction:
//
//	output = SHAKE-256(len(domain) || domain || len(input) || input, outputLen)
func DeriveKey(domain string, input []byte, outputLen int) ([]byte, error) {
	return DeriveKeyMultiple(domain, [][]byte{input}, outputLen)
}

// DeriveKeyMultiple derives keying material from multiple inputs with domain
// separation. Each input is length-prefixed; the input count is included so
// input boundaries can never be shifted.
func DeriveKeyMultiple(domain string, inputs [][]byte, outputLen int) ([]byte, error) {
	if outputLen <= 0 || outputLen > 1<<16 {
		return nil, serrors.NewCryptoError("DeriveKeyMultiple", serrors.ErrInvalidKeySize)
	}

	h := sha3.NewShake256()
	lenBuf := make([]byte, 4)

	domainBytes := []byte(domain)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(domainBytes)))
	h.Write(lenBuf)
	h.Write(domainBytes)

	binary.BigEndian.PutUint32(lenBuf, uint32(len(inputs)))
	h.Write(lenBuf)

	for _, input := range inputs {
		binary.BigEndian.PutUint32(lenBuf, uint32(len(input)))
		h.Write(lenBuf)
		h.Write(input)
	}

	output := make([]byte, outputLen)
	_, _ = h.Read(output) // SHAKE256.Read never fails

	return output, nil
}

// DeriveSessionKey derives the symmetric session key for an established
// connection. Both sides call it with the identical wire bytes, so any
// transcript disagreement yields mismatched keys and the first channel
// message fails authentication.
//
// Inputs, in order: the X25519 shared secret, the client ephemeral public
// key bytes, the server ephemeral public key bytes, the client username, and
// the server name. The latter four are used exactly as they appeared on the
// wire.
func DeriveSessionKey(sharedSecret, clientEphPub, serverEphPub, username, serverName []byte) ([]byte, error) {
	if len(sharedSecret) != constants.X25519SharedSecretSize {
		return nil, serrors.NewCryptoError("DeriveSessionKey", serrors.ErrInvalidKeySize)
	}

	return DeriveKeyMultiple(
		constants.DomainSeparatorSession,
		[][]byte{sharedSecret, clientEphPub, serverEphPub, username, serverName},
		constants.SessionKeySize,
	)
}
