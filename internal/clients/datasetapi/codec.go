package datasetapi

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/vmihailenco/msgpack/v5"
)

// KeySize is the payload key length (AES-256).
const KeySize = 32

// ErrMalformedPayload is returned when a payload cannot be decoded or authenticated.
var ErrMalformedPayload = errors.New("malformed dataset payload")

// Codec serializes values with msgpack and seals them with AES-GCM. Payloads are
// base64url(nonce || ciphertext). Both the chart service and the dataset service
// hold the same key.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a codec from a raw 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("payload key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// NewCodecFromHex creates a codec from a hex-encoded key.
func NewCodecFromHex(hexKey string) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload key: %w", err)
	}
	return NewCodec(key)
}

// Seal encodes and encrypts v.
func (c *Codec) Seal(v any) (string, error) {
	plain, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts and decodes payload into v. Any failure wraps ErrMalformedPayload.
func (c *Codec) Open(payload string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return fmt.Errorf("%w: payload too short", ErrMalformedPayload)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := msgpack.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// EncodeQuery seals a wire-vocabulary query.
func (c *Codec) EncodeQuery(q *dataset.Query) (string, error) {
	return c.Seal(q)
}

// DecodeQuery opens a sealed query.
func (c *Codec) DecodeQuery(payload string) (*dataset.Query, error) {
	var q dataset.Query
	if err := c.Open(payload, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// EncodeTable seals a result table.
func (c *Codec) EncodeTable(t *dataset.Table) (string, error) {
	return c.Seal(t)
}

// DecodeTable opens a sealed result table.
func (c *Codec) DecodeTable(payload string) (*dataset.Table, error) {
	var t dataset.Table
	if err := c.Open(payload, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
