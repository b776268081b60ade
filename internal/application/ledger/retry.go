package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
)

// RetryPolicy presupuesto de reintentos del servicio.
// Los conflictos de escritura se reintentan de inmediato (cada intento vuelve a leer);
// la indisponibilidad del almacenamiento espera con backoff exponencial acotado.
type RetryPolicy struct {
	ConflictRetries    int
	UnavailableRetries int
	BaseBackoff        time.Duration
	MaxBackoff         time.Duration
}

// DefaultRetryPolicy valores usados cuando la configuración no define otros.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		ConflictRetries:    3,
		UnavailableRetries: 3,
		BaseBackoff:        50 * time.Millisecond,
		MaxBackoff:         2 * time.Second,
	}
}

// Backoff espera antes del intento número attempt (desde 0).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseBackoff * time.Duration(1<<min(attempt, 10))
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// withRetry ejecuta fn hasta que tenga éxito, falle con un error no reintentable o se agote el presupuesto.
// Al agotarse devuelve el último error tal cual para que los llamadores puedan usar errors.Is.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	conflicts, outages := 0, 0
	for {
		err := fn()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrConcurrentAppendConflict) && conflicts < s.retry.ConflictRetries:
			conflicts++
			s.log.Debug().Str("op", op).Int("attempt", conflicts).Msg("conflicto de escritura, reintentando")
		case errors.Is(err, domain.ErrStorageUnavailable) && outages < s.retry.UnavailableRetries:
			wait := s.retry.Backoff(outages)
			outages++
			s.log.Warn().Err(err).Str("op", op).Int("attempt", outages).Dur("wait", wait).Msg("almacenamiento no disponible, reintentando")
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		default:
			if domain.IsRetryable(err) {
				s.log.Error().Err(err).Str("op", op).Msg("presupuesto de reintentos agotado")
			}
			return err
		}
	}
}
