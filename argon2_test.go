package homepage_test

import (
	"strings"
	"testing"

	homepage "github.com/goliatone/go-homepage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps the KDF cheap for tests.
func fastParams() homepage.HasherParams {
	return homepage.HasherParams{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestHasher(t *testing.T, pepper string) *homepage.Hasher {
	t.Helper()
	hasher, err := homepage.NewHasher([]byte(pepper), fastParams())
	require.NoError(t, err)
	return hasher
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hasher := newTestHasher(t, "test-pepper")

	hash, err := hasher.HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NoError(t, hasher.ComparePasswordAndHash("correct horse battery", hash))
}

func TestComparePasswordAndHashWrongPassword(t *testing.T) {
	hasher := newTestHasher(t, "test-pepper")

	hash, err := hasher.HashPassword("correct horse battery")
	require.NoError(t, err)

	err = hasher.ComparePasswordAndHash("wrong password", hash)
	assert.ErrorIs(t, err, homepage.ErrMismatchedHashAndPassword)
}

func TestComparePasswordAndHashWrongPepper(t *testing.T) {
	hasher := newTestHasher(t, "pepper-one")
	other := newTestHasher(t, "pepper-two")

	hash, err := hasher.HashPassword("correct horse battery")
	require.NoError(t, err)

	// same password, different server secret: must not verify
	err = other.ComparePasswordAndHash("correct horse battery", hash)
	assert.ErrorIs(t, err, homepage.ErrMismatchedHashAndPassword)
}

func TestHashPasswordFreshSalt(t *testing.T) {
	hasher := newTestHasher(t, "test-pepper")

	first, err := hasher.HashPassword("correct horse battery")
	require.NoError(t, err)
	second, err := hasher.HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestComparePasswordAndHashUsesEncodedParams(t *testing.T) {
	// a hash produced under old parameters keeps verifying after the
	// server's defaults change
	old := newTestHasher(t, "test-pepper")
	hash, err := old.HashPassword("correct horse battery")
	require.NoError(t, err)

	params := fastParams()
	params.Time = 2
	upgraded, err := homepage.NewHasher([]byte("test-pepper"), params)
	require.NoError(t, err)

	assert.NoError(t, upgraded.ComparePasswordAndHash("correct horse battery", hash))
}

func TestComparePasswordAndHashMalformed(t *testing.T) {
	hasher := newTestHasher(t, "test-pepper")

	for _, hash := range []string{
		"",
		"not a hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA",
	} {
		assert.Error(t, hasher.ComparePasswordAndHash("whatever123", hash), "hash: %q", hash)
	}
}

func TestNewHasherRejectsEmptyPepper(t *testing.T) {
	_, err := homepage.NewHasher(nil, fastParams())
	assert.Error(t, err)
}
