package redaction

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

// Session holds the per-job token table. Tokens are derived from keyed
// blake2b fingerprints, so equal values get equal tokens within a job and
// raw values are never stored. All methods are safe for concurrent use,
// though the engine applies strategies sequentially for determinism.
type Session struct {
	id       uuid.UUID
	tokenKey []byte
	hashKey  []byte

	mu     sync.Mutex
	tokens map[string]string // fingerprint -> token
	issued map[string]string // token -> fingerprint, for collision checks
}

// NewSession creates a session. A nil tokenKey gets a random per-session
// key: tokens stay stable within the job but not across jobs. hashKey may
// be nil when no hash rule is configured.
func NewSession(tokenKey, hashKey []byte) (*Session, error) {
	if tokenKey == nil {
		tokenKey = make([]byte, 32)
		if _, err := rand.Read(tokenKey); err != nil {
			return nil, core.WrapError(core.ErrInvalidConfig, "redaction", "generating session key", err)
		}
	}
	if len(tokenKey) > 64 {
		return nil, core.NewError(core.ErrInvalidConfig, "redaction", "token key exceeds 64 bytes")
	}
	return &Session{
		id:       uuid.New(),
		tokenKey: tokenKey,
		hashKey:  hashKey,
		tokens:   make(map[string]string),
		issued:   make(map[string]string),
	}, nil
}

// ID returns the session identifier recorded in reports.
func (s *Session) ID() uuid.UUID { return s.id }

// HasHashKey reports whether hash rules can run in this session.
func (s *Session) HasHashKey() bool { return len(s.hashKey) > 0 }

// TokenCount returns the number of distinct values tokenized so far.
func (s *Session) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Token returns the stable token for a value, issuing one on first sight.
// Tokens have the form TKN-<NS>-<hex>, where NS is the category namespace.
func (s *Session) Token(ns, value string) (string, error) {
	fp, err := s.fingerprint(value)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.tokens[fp]; ok {
		return tok, nil
	}

	// Widen the fingerprint slice until the token is collision-free.
	for width := 12; width <= len(fp); width += 4 {
		tok := fmt.Sprintf("TKN-%s-%s", ns, fp[:width])
		if prev, taken := s.issued[tok]; !taken || prev == fp {
			s.tokens[fp] = tok
			s.issued[tok] = fp
			return tok, nil
		}
	}
	return "", core.NewError(core.ErrInvalidConfig, "redaction", "token space exhausted")
}

// Hash returns the keyed HMAC-SHA256 replacement HSH-<16hex> for a value.
func (s *Session) Hash(value string) (string, error) {
	if len(s.hashKey) == 0 {
		return "", core.NewError(core.ErrSessionKeyMissing, "redaction", "hash strategy requires a configured key")
	}
	mac := hmac.New(sha256.New, s.hashKey)
	mac.Write([]byte(value))
	return "HSH-" + hex.EncodeToString(mac.Sum(nil))[:16], nil
}

func (s *Session) fingerprint(value string) (string, error) {
	h, err := blake2b.New256(s.tokenKey)
	if err != nil {
		return "", core.WrapError(core.ErrInvalidConfig, "redaction", "initializing fingerprint hash", err)
	}
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// namespaces maps leaf categories to short token namespaces. Categories
// without an entry use GEN.
var namespaces = map[category.Category]string{
	category.Email:          "EMAIL",
	category.PhoneNumber:    "PHONE",
	category.SSN:            "SSN",
	category.CreditCard:     "CC",
	category.BankAccount:    "ACCT",
	category.IBAN:           "IBAN",
	category.RoutingNumber:  "ABA",
	category.IPAddress:      "IP",
	category.IPv6Address:    "IP6",
	category.MACAddress:     "MAC",
	category.IMEI:           "IMEI",
	category.CryptoWallet:   "WALLET",
	category.APIKey:         "KEY",
	category.AWSAccessKey:   "AWS",
	category.JWTToken:       "JWT",
	category.PrivateKey:     "PEM",
	category.Password:       "PWD",
	category.PassportNumber: "PASSPORT",
	category.DriversLicense: "DL",
	category.TaxID:          "EIN",
	category.MedicareID:     "MBI",
	category.VIN:            "VIN",
	category.DateOfBirth:    "DOB",
	category.StreetAddress:  "ADDR",
	category.GPSCoordinates: "GEO",
	category.FullName:       "NAME",
}

// Namespace returns the token namespace for a category.
func Namespace(c category.Category) string {
	if ns, ok := namespaces[c]; ok {
		return ns
	}
	return "GEN"
}
