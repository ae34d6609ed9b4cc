package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry(WithClock(fixedClock()))
	a := r.Get("alice")
	assert.Same(t, a, r.Get("alice"))
	assert.NotSame(t, a, r.Get("bob"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "17.10.2026", a.Today().String(), "registry options reach every ledger")
}

func TestRegistryConcurrentFirstAccess(t *testing.T) {
	r := NewRegistry()
	const workers = 32

	got := make([]*Ledger, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get("same-user")
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		require.Same(t, got[0], l)
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryIsolatesUsers(t *testing.T) {
	r := NewRegistry(WithClock(fixedClock()))
	_, err := r.Get("alice").AddIncome("Salary", dec("50000"), "work", "")
	require.NoError(t, err)
	_, err = r.Get("alice").AddCategory("income", "freelance")
	require.NoError(t, err)

	bob := r.Get("bob")
	assert.Empty(t, bob.Incomes())
	assert.True(t, bob.Balance().IsZero())
	assert.NotContains(t, bob.Categories("income"), "freelance")
}

func TestRegistryConcurrentUsers(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(u int) {
				defer wg.Done()
				_, _ = r.Get(fmt.Sprintf("user-%d", u)).AddExpense("Coffee", dec("2"), "food", "")
			}(u)
		}
	}
	wg.Wait()

	for u := 0; u < 8; u++ {
		l := r.Get(fmt.Sprintf("user-%d", u))
		assert.Equal(t, 25, l.Count().Expenses)
		assert.True(t, dec("50").Equal(l.TotalExpense()))
	}
}
