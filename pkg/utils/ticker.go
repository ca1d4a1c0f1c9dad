package utils

import "strings"

// Common NSE ticker aliases.
var tickerAliases = map[string]string{
	"RIL":         "RELIANCE",
	"INFOSYS":     "INFY",
	"HDFC BANK":   "HDFCBANK",
	"ICICI BANK":  "ICICIBANK",
	"SBI":         "SBIN",
	"AIRTEL":      "BHARTIARTL",
	"L&T":         "LT",
	"TATA MOTORS": "TATAMOTORS",
	"TATA STEEL":  "TATASTEEL",
	"KOTAK":       "KOTAKBANK",
	"AXIS BANK":   "AXISBANK",
	"HUL":         "HINDUNILVR",
	"NESTLE":      "NESTLEIND",
	"COAL INDIA":  "COALINDIA",
}

// NormalizeTicker normalizes a user-input ticker to canonical NSE format.
// It handles exchange prefixes ("NSE:INFY"), aliases, uppercasing, and
// whitespace.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	// Strip an exchange prefix if present.
	if i := strings.IndexByte(ticker, ':'); i >= 0 {
		ticker = ticker[i+1:]
	}

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToVendorTicker converts an NSE ticker to the vendor chart API format by
// appending .NS when no exchange suffix is present.
func ToVendorTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)
	if strings.HasSuffix(ticker, ".NS") || strings.HasSuffix(ticker, ".BO") {
		return ticker
	}
	return ticker + ".NS"
}

// FromVendorTicker strips the .NS or .BO suffix to get the plain ticker.
func FromVendorTicker(vendorTicker string) string {
	vendorTicker = strings.TrimSuffix(vendorTicker, ".NS")
	return strings.TrimSuffix(vendorTicker, ".BO")
}
