package shared

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount the way the billing UI and mobile app
// display money, e.g. "Rp 111.000,00".
func FormatRupiah(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return rupiahPrinter.Sprintf("Rp %.2f", f)
}
