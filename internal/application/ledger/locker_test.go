package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := ledger.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "stock:P1@S1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "stock:P1@S1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Otra clave no espera.
	other, err := l.Lock(context.Background(), "stock:P2@S1")
	require.NoError(t, err)
	other()

	unlock()
	unlock() // liberar dos veces no bloquea ni entra en pánico

	again, err := l.Lock(context.Background(), "stock:P1@S1")
	require.NoError(t, err)
	again()
}

func TestLocalLocker_WaiterProceedsAfterUnlock(t *testing.T) {
	l := ledger.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(context.Background(), "k")
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("el segundo escritor no debió obtener el candado")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("el segundo escritor no obtuvo el candado")
	}
}
