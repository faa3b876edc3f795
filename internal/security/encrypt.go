package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var hkdfInfo = []byte("social-media/message-body/v1")

// Encryptor seals message bodies at rest with AES-256-GCM. New data is always
// sealed with the primary key; legacy keys are only tried when opening.
type Encryptor struct {
	primary cipher.AEAD
	legacy  []cipher.AEAD
}

func NewEncryptor(key []byte, legacyKeys []string) (*Encryptor, error) {
	if len(key) == 0 {
		return nil, errors.New("encryption key must not be empty")
	}
	primary, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	e := &Encryptor{primary: primary}
	for _, raw := range legacyKeys {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		aead, err := newAEAD([]byte(raw))
		if err != nil {
			return nil, err
		}
		e.legacy = append(e.legacy, aead)
	}
	return e, nil
}

// newAEAD derives a 32-byte key from an arbitrary-length secret.
func newAEAD(secret []byte) (cipher.AEAD, error) {
	k := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, hkdfInfo), k); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (e *Encryptor) Encrypt(plain string) (string, error) {
	nonce := make([]byte, e.primary.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := e.primary.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (e *Encryptor) Decrypt(enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", errors.New("failed to decrypt message payload")
	}
	for _, aead := range append([]cipher.AEAD{e.primary}, e.legacy...) {
		if len(raw) < aead.NonceSize() {
			continue
		}
		nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
		if plain, err := aead.Open(nil, nonce, ciphertext, nil); err == nil {
			return string(plain), nil
		}
	}
	return "", errors.New("failed to decrypt message payload")
}
