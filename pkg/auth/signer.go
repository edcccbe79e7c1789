package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrSelfVerification means a freshly produced signature did not verify against its own key.
// It indicates a broken signing path and must never be transmitted.
var ErrSelfVerification = errors.New("signature failed self verification")

// SignatureLengthError reports a signature longer than the 8 bit length field of auth page 0
type SignatureLengthError struct {
	Length int
}

func (e *SignatureLengthError) Error() string {
	return fmt.Sprintf("signature of %d bytes exceeds the %d byte auth length field", e.Length, math.MaxUint8)
}

// KeyPair is a secp256k1 signing key and its public half
type KeyPair struct {
	Private *secp256k1.PrivateKey
	Public  *secp256k1.PublicKey
}

// GenerateKeyPair creates a fresh keypair for this run
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "GeneratePrivateKey issue")
	}
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// PublicKeyHex returns the compressed SEC1 public key as hex
func (k *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(k.Public.SerializeCompressed())
}

// Result describes one signing pass
type Result struct {
	Digest    [sha256.Size]byte
	Signature []byte
	Verified  bool
	Pages     int
}

// Signer signs a record and writes the page fragmented signature into its auth block
type Signer struct {
	Key      *KeyPair
	MaxPages int
	Clock    util.Clock
	Logger   *zap.Logger

	// sign is replaceable so tests can exercise the self verification guard
	sign func(*secp256k1.PrivateKey, []byte) []byte
}

// NewSigner returns a signer using the full auth page budget of a record
func NewSigner(key *KeyPair, logger *zap.Logger) *Signer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Signer{Key: key, MaxPages: models.AuthMaxPages, Logger: logger}
}

func derSign(priv *secp256k1.PrivateKey, hash []byte) []byte {
	return ecdsa.Sign(priv, hash).Serialize()
}

// Sign signs d and populates its authentication pages.
// d is left untouched when the signature fails self verification or does not fit the page budget.
func (s *Signer) Sign(d *models.UASData) (*Result, error) {
	sign := s.sign
	if sign == nil {
		sign = derSign
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	digest := Digest(d)
	sig := sign(s.Key.Private, digest[:])
	res := &Result{Digest: digest, Signature: sig}
	if len(sig) > math.MaxUint8 {
		return res, &SignatureLengthError{Length: len(sig)}
	}
	res.Verified = verify(sig, digest[:], s.Key.Public)
	logger.Info("Signed record",
		zap.String("digest", hex.EncodeToString(digest[:])),
		zap.String("signature", hex.EncodeToString(sig)),
		zap.Int("signature_len", len(sig)),
		zap.Bool("verified", res.Verified))
	if !res.Verified {
		return res, ErrSelfVerification
	}
	maxPages := s.MaxPages
	if maxPages <= 0 || maxPages > models.AuthMaxPages {
		maxPages = models.AuthMaxPages
	}
	pages, err := util.SplitPages(sig, util.AuthFirstPageCapacity, util.AuthPageCapacity, maxPages)
	if err != nil {
		return res, err
	}
	res.Pages = len(pages)
	writePages(d, pages, len(sig), util.AuthTimestamp(s.Clock.Now()))
	for _, p := range pages {
		logger.Debug("Auth page", zap.Int("page", p.Index), zap.String("data", hex.EncodeToString(p.Data)))
	}
	return res, nil
}

func writePages(d *models.UASData, pages []util.Page, length int, ts uint32) {
	for i := range d.Auth {
		d.Auth[i] = models.AuthPage{}
	}
	for _, p := range pages {
		page := &d.Auth[p.Index]
		page.AuthType = models.AuthUASIDSignature
		page.DataPage = uint8(p.Index)
		copy(page.AuthData[:], p.Data)
	}
	d.Auth[0].Timestamp = ts
	d.Auth[0].LastPageIndex = uint8(len(pages) - 1)
	d.Auth[0].Length = uint8(length)
}

func verify(sig, hash []byte, pub *secp256k1.PublicKey) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(hash, pub)
}
