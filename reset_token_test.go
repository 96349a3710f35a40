package accounts_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenCodec_EncodeDecode(t *testing.T) {
	issuedAt := time.UnixMilli(time.Now().UnixMilli())
	codec := accounts.NewResetTokenCodec(accounts.WithResetClock(func() time.Time {
		return issuedAt
	}))

	t.Run("round trips email and creation instant", func(t *testing.T) {
		token, err := codec.Encode("a@b.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		data, err := codec.Decode(token)
		require.NoError(t, err)

		assert.Equal(t, "a@b.com", data.Email)
		assert.True(t, data.CreatedAt.Equal(issuedAt))
	})

	t.Run("payload has three positional segments", func(t *testing.T) {
		token, err := codec.Encode("a@b.com")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(token)
		require.NoError(t, err)

		parts := strings.Split(string(raw), ":")
		require.Len(t, parts, 3)
		assert.NotEmpty(t, parts[1])
		assert.Equal(t, "a@b.com", parts[2])
	})

	t.Run("two tokens for the same email differ", func(t *testing.T) {
		first, err := codec.Encode("a@b.com")
		require.NoError(t, err)

		second, err := codec.Encode("a@b.com")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects an empty email", func(t *testing.T) {
		_, err := codec.Encode("")
		assert.Error(t, err)
	})
}

func TestResetTokenCodec_DecodeMalformed(t *testing.T) {
	codec := accounts.NewResetTokenCodec()

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "!!not-base64!!"},
		{"no separators", base64.StdEncoding.EncodeToString([]byte("justonevalue"))},
		{"two segments only", base64.StdEncoding.EncodeToString([]byte("1700000000000:abc"))},
		{"timestamp not a number", base64.StdEncoding.EncodeToString([]byte("soon:abc:a@b.com"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := codec.Decode(tt.token)

			assert.Nil(t, data)
			assert.Error(t, err)
			assert.True(t, accounts.IsMalformedTokenError(err))
		})
	}
}

func TestResetTokenCodec_Expired(t *testing.T) {
	issuedAt := time.UnixMilli(time.Now().UnixMilli())

	encodeAt := func(ts time.Time) string {
		codec := accounts.NewResetTokenCodec(accounts.WithResetClock(func() time.Time {
			return ts
		}))
		token, err := codec.Encode("a@b.com")
		require.NoError(t, err)
		return token
	}

	checkAt := func(ts time.Time) *accounts.ResetTokenCodec {
		return accounts.NewResetTokenCodec(accounts.WithResetClock(func() time.Time {
			return ts
		}))
	}

	token := encodeAt(issuedAt)

	t.Run("valid just inside the window", func(t *testing.T) {
		codec := checkAt(issuedAt.Add(4*time.Minute + 59*time.Second))

		data, err := codec.Decode(token)
		require.NoError(t, err)
		assert.False(t, codec.Expired(data))
	})

	t.Run("valid at the window boundary", func(t *testing.T) {
		codec := checkAt(issuedAt.Add(5 * time.Minute))

		data, err := codec.Decode(token)
		require.NoError(t, err)
		assert.False(t, codec.Expired(data))
	})

	t.Run("expired past the window", func(t *testing.T) {
		codec := checkAt(issuedAt.Add(5*time.Minute + time.Second))

		data, err := codec.Decode(token)
		require.NoError(t, err)
		assert.True(t, codec.Expired(data))
	})

	t.Run("repeated checks with a fixed clock agree", func(t *testing.T) {
		codec := checkAt(issuedAt.Add(time.Minute))

		data, err := codec.Decode(token)
		require.NoError(t, err)

		assert.False(t, codec.Expired(data))
		assert.False(t, codec.Expired(data))
	})

	t.Run("nil data counts as expired", func(t *testing.T) {
		codec := checkAt(issuedAt)
		assert.True(t, codec.Expired(nil))
	})

	t.Run("custom validity overrides the default window", func(t *testing.T) {
		codec := accounts.NewResetTokenCodec(
			accounts.WithResetClock(func() time.Time {
				return issuedAt.Add(2 * time.Minute)
			}),
			accounts.WithResetValidity(time.Minute),
		)

		data, err := codec.Decode(token)
		require.NoError(t, err)
		assert.True(t, codec.Expired(data))
	})
}
