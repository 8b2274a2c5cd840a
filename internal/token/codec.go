package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/tduarte/shorts-server/internal/model"
)

// DevSecret is used when no secret is configured outside production mode.
// Anyone who knows it can forge capability tokens, so startup refuses an
// empty secret in production.
const DevSecret = "changeit-dev-only"

var _ model.TokenCodec = (*Codec)(nil)

// Codec derives capability tokens as keyed digests of a resource locator.
// Tokens carry no expiry: they stay valid until the secret rotates or the
// resource string changes.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec bound to the process-wide secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue returns the token authorizing access to exactly this resource.
func (c *Codec) Issue(resource string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(resource))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest for resource and compares in constant time.
// It never decodes the token and never errors.
func (c *Codec) Verify(token, resource string) bool {
	want, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(resource))
	return hmac.Equal(want, mac.Sum(nil))
}
