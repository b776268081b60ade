package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Ledger
	ErrOrdering                 = errors.New("movimientos fuera de orden: se esperaba id ascendente")
	ErrInvalidMovement          = errors.New("movimiento inválido")
	ErrPolarityUndetermined     = errors.New("polaridad de la entidad no clasificada")
	ErrPolarityConflict         = errors.New("la entidad ya fue clasificada con otra polaridad")
	ErrStorageUnavailable       = errors.New("almacenamiento no disponible")
	ErrConcurrentAppendConflict = errors.New("conflicto de escritura concurrente en la secuencia de la entidad")

	// Toma de inventario
	ErrAlreadyPosted   = errors.New("la toma de inventario ya fue contabilizada")
	ErrIncompleteCount = errors.New("la toma de inventario tiene productos sin contar")
)

// OrderingError indica la primera posición donde la secuencia deja de ser estrictamente ascendente.
type OrderingError struct {
	Index  int
	PrevID int64
	ID     int64
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("movimiento %d fuera de orden: id %d después de id %d", e.Index, e.ID, e.PrevID)
}

func (e *OrderingError) Unwrap() error { return ErrOrdering }

// InvalidMovementError detalla qué movimiento viola la invariante entrada/salida.
type InvalidMovementError struct {
	ID     int64
	Reason string
}

func (e *InvalidMovementError) Error() string {
	return fmt.Sprintf("movimiento %d inválido: %s", e.ID, e.Reason)
}

func (e *InvalidMovementError) Unwrap() error { return ErrInvalidMovement }

// PolarityUndeterminedError identifica la entidad sin clasificar.
type PolarityUndeterminedError struct {
	EntityRef string
}

func (e *PolarityUndeterminedError) Error() string {
	return fmt.Sprintf("polaridad no clasificada para %s", e.EntityRef)
}

func (e *PolarityUndeterminedError) Unwrap() error { return ErrPolarityUndetermined }

// AlreadyPostedError identifica la sesión que ya no admite cambios.
type AlreadyPostedError struct {
	SessionID string
}

func (e *AlreadyPostedError) Error() string {
	return fmt.Sprintf("la toma de inventario %s ya fue contabilizada", e.SessionID)
}

func (e *AlreadyPostedError) Unwrap() error { return ErrAlreadyPosted }

// IncompleteCountError lista los productos que faltan por contar.
type IncompleteCountError struct {
	SessionID  string
	ProductIDs []string
}

func (e *IncompleteCountError) Error() string {
	return fmt.Sprintf("la toma de inventario %s tiene %d productos sin contar", e.SessionID, len(e.ProductIDs))
}

func (e *IncompleteCountError) Unwrap() error { return ErrIncompleteCount }

// IsRetryable indica si el error puede resolverse reintentando la operación.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentAppendConflict) || errors.Is(err, ErrStorageUnavailable)
}
