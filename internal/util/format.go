package util

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah 以印尼盾格式显示价格，例如 Rp15.000,00
func FormatRupiah(d decimal.Decimal) string {
	minor := d.Shift(int32(money.GetCurrency(money.IDR).Fraction)).Round(0).IntPart()
	return money.New(minor, money.IDR).Display()
}

// FormatNumber 印尼语千分位整数，例如 15.000
func FormatNumber(d decimal.Decimal) string {
	return idPrinter.Sprintf("%d", d.Round(0).IntPart())
}
