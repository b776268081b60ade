package entity

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	accountPrefix  = "account:"
	stockPrefix    = "stock:"
	stockSeparator = "@"
)

// EntityRef identifica el saldo sobre el que actúa un movimiento:
// una cuenta contable (AccountID) o un producto en una tienda/bodega (ProductID + StoreID).
type EntityRef struct {
	AccountID string
	ProductID string
	StoreID   string
}

// NormalizeID recorta espacios y lleva el id a NFC: "Café" compuesto o descompuesto es la misma clave.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// ValidStockID indica si id puede ser producto o tienda: no vacío y sin el separador de Key.
func ValidStockID(id string) bool {
	return id != "" && !strings.Contains(id, stockSeparator)
}

// AccountRef construye la referencia de una cuenta.
func AccountRef(accountID string) EntityRef {
	return EntityRef{AccountID: NormalizeID(accountID)}
}

// StockRef construye la referencia de un producto en una tienda.
func StockRef(productID, storeID string) EntityRef {
	return EntityRef{ProductID: NormalizeID(productID), StoreID: NormalizeID(storeID)}
}

// IsAccount indica si la referencia es de una cuenta.
func (r EntityRef) IsAccount() bool { return r.AccountID != "" }

// IsStock indica si la referencia es de un producto+tienda.
func (r EntityRef) IsStock() bool { return r.AccountID == "" && r.ProductID != "" && r.StoreID != "" }

// Valid exige exactamente una de las dos formas. Producto y tienda no pueden contener "@",
// así Key es inyectiva y ParseEntityRef(r.Key()) devuelve r.
func (r EntityRef) Valid() bool {
	if r.AccountID != "" {
		return r.ProductID == "" && r.StoreID == ""
	}
	return ValidStockID(r.ProductID) && ValidStockID(r.StoreID)
}

// Key devuelve la forma canónica persistida: account:<id> o stock:<producto>@<tienda>.
func (r EntityRef) Key() string {
	if r.AccountID != "" {
		return accountPrefix + r.AccountID
	}
	return stockPrefix + r.ProductID + stockSeparator + r.StoreID
}

func (r EntityRef) String() string { return r.Key() }

// ParseEntityRef es la inversa de Key.
func ParseEntityRef(s string) (EntityRef, error) {
	switch {
	case strings.HasPrefix(s, accountPrefix):
		id := NormalizeID(strings.TrimPrefix(s, accountPrefix))
		if id == "" {
			return EntityRef{}, fmt.Errorf("referencia de cuenta vacía: %q", s)
		}
		return AccountRef(id), nil
	case strings.HasPrefix(s, stockPrefix):
		product, store, ok := strings.Cut(strings.TrimPrefix(s, stockPrefix), stockSeparator)
		ref := StockRef(product, store)
		if !ok || !ref.Valid() {
			return EntityRef{}, fmt.Errorf("referencia de stock inválida: %q", s)
		}
		return ref, nil
	default:
		return EntityRef{}, fmt.Errorf("referencia de entidad desconocida: %q", s)
	}
}
