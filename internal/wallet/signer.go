package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Signer holds the key material for one custody record and signs
// transactions where that key is a required signer.
type Signer struct {
	priv solana.PrivateKey
	pub  solana.PublicKey
}

// NewSigner parses the record's stored key material.
func NewSigner(rec *Record) (*Signer, error) {
	if rec == nil {
		return nil, fmt.Errorf("wallet: record is nil")
	}
	priv, err := ParsePrivateKey(rec.PrivateKey)
	if err != nil {
		return nil, err
	}
	pub := priv.PublicKey()
	if rec.PublicKey != "" && rec.PublicKey != pub.String() {
		return nil, fmt.Errorf("wallet: stored public key %s does not match key material", rec.PublicKey)
	}
	return &Signer{priv: priv, pub: pub}, nil
}

func (s *Signer) PublicKey() solana.PublicKey { return s.pub }

// Sign signs a transaction with the wallet's private key.
func (s *Signer) Sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.pub) {
			return &s.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// NewRecord generates a fresh keypair for a user.
func NewRecord(userID string) (*Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("wallet: keygen failed: %w", err)
	}
	return &Record{
		UserID:     userID,
		PublicKey:  key.PublicKey().String(),
		PrivateKey: key.String(),
	}, nil
}

// ParsePrivateKey accepts a base58-encoded 64-byte key or a solana-keygen
// JSON byte array.
func ParsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
			}
			b[i] = byte(v)
		}
		if len(b) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
		}
		return solana.PrivateKey(ed25519.PrivateKey(b)), nil
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return solana.PrivateKey(ed25519.PrivateKey(raw)), nil
}
