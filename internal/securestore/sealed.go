package securestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// Sealed encrypts values with an age X25519 identity before handing them
// to the inner store. Keys are stored in the clear.
type Sealed struct {
	inner     Store
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// NewSealed wraps inner so that every value is encrypted to identity.
func NewSealed(inner Store, identity *age.X25519Identity) *Sealed {
	return &Sealed{
		inner:     inner,
		identity:  identity,
		recipient: identity.Recipient(),
	}
}

// Open opens the SQLite database at dbPath and seals it with the identity
// at identityPath, generating the identity on first use.
func Open(dbPath, identityPath string) (*Sealed, error) {
	identity, err := LoadOrCreateIdentity(identityPath)
	if err != nil {
		return nil, err
	}
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return NewSealed(db, identity), nil
}

// Get implements Store.
func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	ciphertext, found, err := s.inner.Get(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	plaintext, err := s.open(ciphertext)
	if err != nil {
		return "", false, fmt.Errorf("unseal %s: %w", key, err)
	}
	return plaintext, true, nil
}

// Set implements Store.
func (s *Sealed) Set(ctx context.Context, key, value string) error {
	ciphertext, err := s.seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, ciphertext)
}

// Delete implements Store.
func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Close closes the inner store when it supports closing.
func (s *Sealed) Close() error {
	if c, ok := s.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Sealed) seal(plaintext string) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.recipient)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *Sealed) open(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoding base64: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(raw), s.identity)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading plaintext: %w", err)
	}
	return string(plaintext), nil
}

// LoadOrCreateIdentity reads an age identity (AGE-SECRET-KEY-1...) from
// path. When the file does not exist a new identity is generated and
// written with mode 0600.
func LoadOrCreateIdentity(path string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("invalid identity file %s: %w", path, err)
		}
		return identity, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read identity: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("write identity: %w", err)
	}
	return identity, nil
}
