package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"ms-registration/internal/models"

	"github.com/skip2/go-qrcode"
)

var ErrInvalidToken = errors.New("invalid check-in token")

// Generator issues and verifies encrypted check-in tokens.
type Generator struct {
	aead cipher.AEAD
}

func NewGenerator(secret string) (*Generator, error) {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	block, err := aes.NewCipher(hashed[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Generator{aead: aead}, nil
}

// Token seals ref as nonce||ciphertext, base64url without padding.
func (g *Generator) Token(ref models.CheckInRef) (string, error) {
	data, err := json.Marshal(ref)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := g.aead.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// PNG renders the token as a 256px QR code.
func (g *Generator) PNG(ref models.CheckInRef) ([]byte, error) {
	token, err := g.Token(ref)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, 256)
}

func (g *Generator) Parse(token string) (models.CheckInRef, error) {
	var ref models.CheckInRef

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ref, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	size := g.aead.NonceSize()
	if len(raw) <= size {
		return ref, ErrInvalidToken
	}

	data, err := g.aead.Open(nil, raw[:size], raw[size:], nil)
	if err != nil {
		return ref, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if ref.PaymentOrderID == 0 || ref.EventCode == "" {
		return ref, ErrInvalidToken
	}
	return ref, nil
}
