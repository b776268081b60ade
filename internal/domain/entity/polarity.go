package entity

// Polarity convención de signo de una entidad. Se fija una sola vez al clasificarla;
// nunca se infiere del signo de un saldo.
type Polarity string

const (
	PolarityUnknown      Polarity = ""
	PolarityNormalDebit  Polarity = "NORMAL_DEBIT"  // la entrada aumenta el saldo (activos, stock)
	PolarityNormalCredit Polarity = "NORMAL_CREDIT" // la salida aumenta el saldo (pasivos, ingresos)
)

// Valid indica si la polaridad es una de las dos conocidas.
func (p Polarity) Valid() bool {
	return p == PolarityNormalDebit || p == PolarityNormalCredit
}

// ParsePolarity acepta los nombres persistidos.
func ParsePolarity(s string) (Polarity, bool) {
	p := Polarity(s)
	return p, p.Valid()
}

// LedgerEntity registro del directorio: entidad clasificada con su polaridad.
type LedgerEntity struct {
	Ref      EntityRef
	Polarity Polarity
	Name     string
}
