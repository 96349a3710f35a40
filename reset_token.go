package accounts

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenValidity is the fixed window a reset token stays valid for,
// counted from its creation instant.
const ResetTokenValidity = 5 * time.Minute

const resetKeySegmentBytes = 16

// ResetTokenData is the public payload decoded from a reset token
type ResetTokenData struct {
	Email     string
	CreatedAt time.Time
}

// ResetTokenCodec encodes and decodes self-contained password reset
// tokens: base64(timestampMillis ":" randomSegment ":" email). The random
// segment makes issued tokens unguessable, but it is not re-verified on
// decode; only the timestamp and email are read back. Combined with the
// lack of a server-side consumption marker this means a valid token can be
// replayed until its window closes.
type ResetTokenCodec struct {
	validity time.Duration
	now      func() time.Time
}

// ResetTokenOption customizes codec behavior.
type ResetTokenOption func(*ResetTokenCodec)

// WithResetClock injects a custom clock (useful for tests).
func WithResetClock(clock func() time.Time) ResetTokenOption {
	return func(c *ResetTokenCodec) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithResetValidity overrides the default five minute validity window.
func WithResetValidity(validity time.Duration) ResetTokenOption {
	return func(c *ResetTokenCodec) {
		if validity > 0 {
			c.validity = validity
		}
	}
}

// NewResetTokenCodec creates a codec with the default window and clock.
func NewResetTokenCodec(opts ...ResetTokenOption) *ResetTokenCodec {
	codec := &ResetTokenCodec{
		validity: ResetTokenValidity,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(codec)
		}
	}
	return codec
}

// Encode produces a reset token for the given email, stamped with the
// current instant and a random key segment.
func (c *ResetTokenCodec) Encode(email string) (string, error) {
	if email == "" {
		return "", goerrors.Wrap(ErrNoEmptyString, goerrors.CategoryBadInput, "reset token requires an email")
	}

	segment := make([]byte, resetKeySegmentBytes)
	if _, err := rand.Read(segment); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to source reset token randomness")
	}

	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	payload := ts + ":" + hex.EncodeToString(segment) + ":" + email

	return base64.StdEncoding.EncodeToString([]byte(payload)), nil
}

// Decode extracts the public payload from a token. Parts are positional:
// [0] creation timestamp, [1] random segment (ignored), [2] email.
func (c *ResetTokenCodec) Decode(token string) (*ResetTokenData, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) < 3 {
		return nil, ErrTokenMalformed
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	return &ResetTokenData{
		Email:     parts[2],
		CreatedAt: time.UnixMilli(millis),
	}, nil
}

// Expired is true iff the token's creation instant plus the validity
// window is in the past. Repeated calls with a fixed clock agree.
func (c *ResetTokenCodec) Expired(data *ResetTokenData) bool {
	if data == nil {
		return true
	}
	return data.CreatedAt.Add(c.validity).Before(c.now())
}
