package security

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFormat(t *testing.T) {
	stored, err := HashPassword("secret1")
	require.NoError(t, err)

	digest, salt, ok := strings.Cut(stored, ".")
	require.True(t, ok)
	assert.Len(t, digest, keyLen*2)
	assert.Len(t, salt, saltLen*2)
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("secret1")
	require.NoError(t, err)
	b, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComparePassword(t *testing.T) {
	for _, password := range []string{"secret1", "", "пароль с пробелами", strings.Repeat("x", 200)} {
		stored, err := HashPassword(password)
		require.NoError(t, err)
		assert.True(t, ComparePassword(password, stored), "password %q", password)
		assert.False(t, ComparePassword(password+"!", stored), "password %q", password)
	}
}

func TestComparePasswordMalformed(t *testing.T) {
	valid, err := HashPassword("secret1")
	require.NoError(t, err)
	digest, salt, _ := strings.Cut(valid, ".")

	cases := map[string]string{
		"empty":         "",
		"no delimiter":  digest + salt,
		"empty digest":  "." + salt,
		"empty salt":    digest + ".",
		"not hex":       "zz" + digest[2:] + "." + salt,
		"short digest":  digest[:10] + "." + salt,
		"bcrypt string": "$2a$10$abcdefghijklmnopqrstuv",
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, ComparePassword("secret1", stored))
		})
	}
}

// Node's crypto.scrypt(password, salt, 64) with default cost produces
// the same digest, so credentials created by the previous server keep working.
func TestComparePasswordAcceptsSaltAsHexText(t *testing.T) {
	salt := "00112233445566778899aabbccddeeff"
	digest, err := derive("secret1", salt)
	require.NoError(t, err)

	stored := hex.EncodeToString(digest) + "." + salt
	assert.True(t, ComparePassword("secret1", stored))
}
