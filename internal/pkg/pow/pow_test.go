package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solveChallenge brute-forces a counter whose SHA256(nonce+counter) hash has
// the required number of leading zeros, the same work a widget client does.
func solveChallenge(nonce string, difficulty int) string {
	prefix := strings.Repeat("0", difficulty)
	for i := 0; ; i++ {
		counter := fmt.Sprintf("%d", i)
		hash := sha256.Sum256([]byte(nonce + counter))
		if strings.HasPrefix(hex.EncodeToString(hash[:]), prefix) {
			return counter
		}
	}
}

func TestPoWChallengeRoundTrip(t *testing.T) {
	mgr := NewPoWManager(1)

	nonce := mgr.GenerateNonce()
	require.NotEmpty(t, nonce)

	counter := solveChallenge(nonce, 1)

	token, err := mgr.ValidateProof(nonce, counter)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	r := httptest.NewRequest("POST", "/api/widget/session", nil)
	r.Header.Set(TokenHeaderKey, token)
	assert.True(t, mgr.CheckProofToken(r))
}

func TestPoWNonceIsSingleUse(t *testing.T) {
	mgr := NewPoWManager(0)

	nonce := mgr.GenerateNonce()

	_, err := mgr.ValidateProof(nonce, "1")
	require.NoError(t, err)

	_, err = mgr.ValidateProof(nonce, "1")
	assert.Error(t, err)
}

func TestPoWRejectsUnknownNonce(t *testing.T) {
	mgr := NewPoWManager(0)

	_, err := mgr.ValidateProof("never-issued", "1")
	assert.Error(t, err)
}

func TestPoWRejectsWeakProof(t *testing.T) {
	mgr := NewPoWManager(64)

	nonce := mgr.GenerateNonce()

	// No SHA256 hash has 64 leading zero hex digits short of a full
	// preimage, so any counter must fail.
	_, err := mgr.ValidateProof(nonce, "12345")
	assert.Error(t, err)
}

func TestPoWCheckProofTokenSources(t *testing.T) {
	mgr := NewPoWManager(0)

	nonce := mgr.GenerateNonce()
	token, err := mgr.ValidateProof(nonce, "1")
	require.NoError(t, err)

	header := httptest.NewRequest("POST", "/api/widget/session", nil)
	header.Header.Set(TokenHeaderKey, token)
	assert.True(t, mgr.CheckProofToken(header))

	query := httptest.NewRequest("POST", "/api/widget/session?pow_token="+token, nil)
	assert.True(t, mgr.CheckProofToken(query))

	missing := httptest.NewRequest("POST", "/api/widget/session", nil)
	assert.False(t, mgr.CheckProofToken(missing))

	bogus := httptest.NewRequest("POST", "/api/widget/session", nil)
	bogus.Header.Set(TokenHeaderKey, "not-a-token")
	assert.False(t, mgr.CheckProofToken(bogus))
}
