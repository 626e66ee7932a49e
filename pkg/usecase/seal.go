package usecase

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/nacl/box"
)

// SealSecret encrypts value to a base64 encoded curve25519 public key as a
// libsodium sealed box, the format the secrets API expects. The result is
// base64 encoded.
func SealSecret(publicKey string, value []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode public key")
	}
	if len(raw) != 32 {
		return "", goerr.New("public key must be 32 bytes", goerr.V("length", len(raw)))
	}

	var recipient [32]byte
	copy(recipient[:], raw)

	sealed, err := box.SealAnonymous(nil, value, &recipient, rand.Reader)
	if err != nil {
		return "", goerr.Wrap(err, "failed to seal secret")
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
