package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken reports a malformed or tampered download token.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrExpiredToken reports a well-formed token past its expiry.
	ErrExpiredToken = errors.New("download token expired")
)

// Signer issues HMAC-signed download tokens binding a job to a stored file.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a signer whose tokens live for ttl.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for jobID and name and the moment it expires.
func (s *Signer) Sign(jobID, name string) (string, time.Time, error) {
	if jobID == "" || name == "" {
		return "", time.Time{}, errors.New("job id and file name are required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expires := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	exp := strconv.FormatInt(expires.Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(name))
	return strings.Join([]string{jobID, exp, encoded, s.mac(jobID, exp, encoded)}, "."), expires, nil
}

// Verify checks the signature and expiry and returns what the token names.
func (s *Signer) Verify(token string) (jobID, name string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", ErrInvalidToken
	}
	jobID, exp, encoded, sig := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(sig), []byte(s.mac(jobID, exp, encoded))) {
		return "", "", ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	if s.now().After(time.Unix(unix, 0)) {
		return "", "", fmt.Errorf("%w at %s", ErrExpiredToken, time.Unix(unix, 0).UTC().Format(time.RFC3339))
	}
	return jobID, string(raw), nil
}

func (s *Signer) mac(jobID, exp, encoded string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(jobID + "|" + exp + "|" + encoded))
	return hex.EncodeToString(h.Sum(nil))
}
