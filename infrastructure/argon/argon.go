package argon

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Params controls argon2id key derivation.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
}

var DefaultParams = &Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
}

// Sealer encrypts short secrets at rest with a key derived from a
// passphrase. Each sealed value carries its own salt and nonce.
type Sealer struct {
	secret []byte
	p      *Params
}

func NewSealer(secret string, p *Params) (*Sealer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("sealing secret is required")
	}
	if p == nil {
		p = DefaultParams
	}
	return &Sealer{secret: []byte(secret), p: p}, nil
}

// Seal encrypts plaintext into
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<nonce||ciphertext>.
func (s *Sealer) Seal(plaintext string) (string, error) {
	salt, err := generateRandomBytes(s.p.SaltLength)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(s.key(s.p, salt))
	if err != nil {
		return "", err
	}
	nonce, err := generateRandomBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Sealed := base64.RawStdEncoding.EncodeToString(sealed)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", s.p.Memory, s.p.Iterations, s.p.Parallelism, b64Salt, b64Sealed), nil
}

// Open reverses Seal. It fails when the value was sealed under another secret
// or has been tampered with.
func (s *Sealer) Open(encoded string) (string, error) {
	p, salt, sealed, err := decode(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return "", errors.New("sealed value too short")
	}
	aead, err := chacha20poly1305.NewX(s.key(p, salt))
	if err != nil {
		return "", err
	}
	nonce, ct := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", errors.New("sealed value could not be opened")
	}
	return string(plain), nil
}

func (s *Sealer) key(p *Params, salt []byte) []byte {
	return argon2.IDKey(s.secret, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

func decode(encoded string) (*Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, nil, errors.New("invalid sealed format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, nil, errors.New("invalid key derivation variant")
	}

	p := &Params{}
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism)
	if err != nil {
		return nil, nil, nil, errors.New("invalid key derivation parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, errors.New("invalid salt")
	}
	sealed, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, errors.New("invalid ciphertext")
	}
	p.SaltLength = uint32(len(salt))
	return p, salt, sealed, nil
}

func generateRandomBytes(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}
