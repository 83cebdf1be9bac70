package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"promo-order-bot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A polling task and a burst of manual verifications all observe a valid
// transaction at the same time; the conditional update must let exactly one
// of them commit the transition, and exactly one notification goes out.
func TestConcurrentResolutionHappensOnce(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	order := env.createOrder(t, 10)

	env.oracle.setValid(true)
	env.verifier.Start(order.ID, 10)

	const verifiers = 16
	var wg sync.WaitGroup
	wg.Add(verifiers)
	for i := 0; i < verifiers; i++ {
		go func() {
			defer wg.Done()
			w := env.do(t, http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/verify", token, nil)
			// Every caller sees a confirmed order, however the race lands.
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "CONFIRMED")
		}()
	}
	wg.Wait()

	o, err := env.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusConfirmed, o.Payment.Status)
	require.NotNil(t, o.Payment.ConfirmedAt)

	// Give the polling task time to observe the terminal state and exit.
	require.Eventually(t, func() bool {
		return len(env.verifier.Active()) == 0
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, env.notifier.total(), "one terminal write, one notification")
}

// Concurrent sweeps must not double-start tasks for the same order.
func TestConcurrentSweepsStartEachOrderOnce(t *testing.T) {
	env := newTestEnv(t)

	for i := int64(0); i < 5; i++ {
		env.createOrder(t, 100+i)
	}

	const sweepers = 8
	results := make(chan int, sweepers)
	var wg sync.WaitGroup
	wg.Add(sweepers)
	for i := 0; i < sweepers; i++ {
		go func() {
			defer wg.Done()
			n, err := env.verifier.Sweep(context.Background())
			require.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for n := range results {
		total += n
	}
	assert.Equal(t, 5, total, "each pending order gets exactly one task across all sweeps")
	assert.Len(t, env.verifier.Active(), 5)
}
