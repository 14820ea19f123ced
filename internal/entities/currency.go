package entities

import "strings"

type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	PKR CurrencyCode = "PKR"
	INR CurrencyCode = "INR"
	JPY CurrencyCode = "JPY"
	CAD CurrencyCode = "CAD"
	AUD CurrencyCode = "AUD"
	CNY CurrencyCode = "CNY"
	SAR CurrencyCode = "SAR"
	AED CurrencyCode = "AED"
	TRY CurrencyCode = "TRY"
	CHF CurrencyCode = "CHF"
)

type Currency struct {
	Code  CurrencyCode `json:"code"`
	Label string       `json:"label"`
}

// Currencies is the selector order shown to the user.
var Currencies = []Currency{
	{USD, "🇺🇸 United States Dollar"},
	{EUR, "🇪🇺 Euro"},
	{GBP, "🇬🇧 British Pound"},
	{PKR, "🇵🇰 Pakistani Rupee"},
	{INR, "🇮🇳 Indian Rupee"},
	{JPY, "🇯🇵 Japanese Yen"},
	{CAD, "🇨🇦 Canadian Dollar"},
	{AUD, "🇦🇺 Australian Dollar"},
	{CNY, "🇨🇳 Chinese Yuan"},
	{SAR, "🇸🇦 Saudi Riyal"},
	{AED, "🇦🇪 UAE Dirham"},
	{TRY, "🇹🇷 Turkish Lira"},
	{CHF, "🇨🇭 Swiss Franc"},
}

const (
	DefaultFrom   = USD
	DefaultTo     = PKR
	DefaultAmount = 1.0
)

func ParseCurrencyCode(s string) (CurrencyCode, bool) {
	code := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	return code, code.IsSupported()
}

func (c CurrencyCode) IsSupported() bool {
	for _, currency := range Currencies {
		if currency.Code == c {
			return true
		}
	}
	return false
}

func (c CurrencyCode) Label() string {
	for _, currency := range Currencies {
		if currency.Code == c {
			return currency.Label
		}
	}
	return string(c)
}

func (c CurrencyCode) String() string {
	return string(c)
}
