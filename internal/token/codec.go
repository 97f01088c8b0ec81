package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultExpiry is the window applied when a codec is built without an
// explicit one.
const DefaultExpiry = 30 * 24 * time.Hour

const signatureHexLen = 16

// Codec signs and verifies the compact pass identity token embedded in
// a QR payload. Wire format: "<passId>:<expiryEpochMillis>.<hmac16hex>".
// It is a pure function of secret, inputs and clock; the secret is
// injected at construction.
type Codec struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewCodec(secret string, expiry time.Duration) *Codec {
	if expiry == 0 {
		expiry = DefaultExpiry
	}
	return &Codec{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Sign produces a token for passID expiring after the codec's window.
func (c *Codec) Sign(passID string) (string, error) {
	return c.SignWithExpiry(passID, c.expiry)
}

// SignWithExpiry produces a token for passID expiring after window.
// Regenerating a token does not invalidate previously issued ones;
// each stays valid until its own expiry.
func (c *Codec) SignWithExpiry(passID string, window time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", fmt.Errorf("token codec: signing secret not configured")
	}
	expiry := c.now().Add(window).UnixMilli()
	payload := fmt.Sprintf("%s:%d", passID, expiry)
	return payload + "." + c.mac(payload), nil
}

// Verify checks the signature and expiry of a token and returns the
// embedded pass ID. No partial trust: a token whose payload parses but
// whose signature fails yields ok=false.
func (c *Codec) Verify(raw string) (string, bool) {
	if len(c.secret) == 0 || raw == "" {
		return "", false
	}

	dot := strings.LastIndex(raw, ".")
	if dot < 0 {
		return "", false
	}
	payload, sig := raw[:dot], raw[dot+1:]

	expected := c.mac(payload)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", false
	}

	colon := strings.LastIndex(payload, ":")
	if colon < 0 {
		return "", false
	}
	passID := payload[:colon]
	expiry, err := strconv.ParseInt(payload[colon+1:], 10, 64)
	if err != nil || passID == "" {
		return "", false
	}

	if c.now().UnixMilli() > expiry {
		return "", false
	}
	return passID, true
}

func (c *Codec) mac(payload string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))[:signatureHexLen]
}
