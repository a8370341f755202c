package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndOnline(t *testing.T) {
	r := NewRegistry()

	assert.Empty(t, r.OnlineIdentities())
	assert.Empty(t, r.Connections("u1"))

	r.Add("u1", "c1")

	assert.ElementsMatch(t, []string{"u1"}, r.OnlineIdentities())
	assert.ElementsMatch(t, []string{"c1"}, r.Connections("u1"))
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Add("u1", "c1")
	r.Add("u1", "c1")

	assert.Equal(t, 1, r.ConnectionCount("u1"))
}

func TestRegistrySecondTabKeepsIdentityOnline(t *testing.T) {
	r := NewRegistry()

	r.Add("u1", "c1")
	assert.ElementsMatch(t, []string{"u1"}, r.OnlineIdentities())

	// Second tab: same identity, new connection.
	r.Add("u1", "c2")
	assert.ElementsMatch(t, []string{"u1"}, r.OnlineIdentities())
	assert.ElementsMatch(t, []string{"c1", "c2"}, r.Connections("u1"))

	r.Remove("u1", "c1")
	assert.ElementsMatch(t, []string{"u1"}, r.OnlineIdentities())
	assert.ElementsMatch(t, []string{"c2"}, r.Connections("u1"))

	r.Remove("u1", "c2")
	assert.Empty(t, r.OnlineIdentities())
	assert.Empty(t, r.Connections("u1"))
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Add("u1", "c1")
	r.Add("u2", "c2")

	// Removing a pair twice, or a pair that was never added, must not panic
	// and must not disturb other identities.
	r.Remove("u1", "c1")
	r.Remove("u1", "c1")
	r.Remove("ghost", "c9")

	assert.Empty(t, r.Connections("u1"))
	assert.ElementsMatch(t, []string{"u2"}, r.OnlineIdentities())
	assert.ElementsMatch(t, []string{"c2"}, r.Connections("u2"))
}

func TestRegistryRemovingOneConnectionLeavesOthersIntact(t *testing.T) {
	r := NewRegistry()

	r.Add("u1", "c1")
	r.Add("u1", "c2")

	r.Remove("u1", "c1")

	assert.ElementsMatch(t, []string{"c2"}, r.Connections("u1"))
}

func TestRegistryConnectionsReturnsCopy(t *testing.T) {
	r := NewRegistry()

	r.Add("u1", "c1")

	conns := r.Connections("u1")
	conns[0] = "mutated"

	assert.ElementsMatch(t, []string{"c1"}, r.Connections("u1"))
}

func TestRegistryConcurrentAddsLoseNoUpdates(t *testing.T) {
	const (
		identities       = 100
		connsPerIdentity = 3
	)

	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < identities; i++ {
		for j := 0; j < connsPerIdentity; j++ {
			wg.Add(1)
			go func(identity, conn int) {
				defer wg.Done()
				r.Add(fmt.Sprintf("u%d", identity), fmt.Sprintf("u%d-c%d", identity, conn))
			}(i, j)
		}
	}
	wg.Wait()

	require.Len(t, r.OnlineIdentities(), identities)
	for i := 0; i < identities; i++ {
		assert.Equal(t, connsPerIdentity, r.ConnectionCount(fmt.Sprintf("u%d", i)))
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := fmt.Sprintf("u%d", n%10)
			connID := fmt.Sprintf("c%d", n)

			r.Add(identity, connID)
			r.Connections(identity)
			r.OnlineIdentities()
			r.Remove(identity, connID)
		}(i)
	}
	wg.Wait()

	assert.Empty(t, r.OnlineIdentities())
}
