package utils

import "strings"

// NormalizeSymbol uppercases and trims a user-supplied symbol and strips
// a leading "$" (common in chat-style input).
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	return strings.TrimPrefix(symbol, "$")
}

// BaseSymbol strips the exchange suffix from a qualified symbol:
// "RELIANCE.NS" → "RELIANCE", "500325.BO" → "500325".
func BaseSymbol(symbol string) string {
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// Exchange reports the exchange implied by a symbol's suffix: "NSE" for
// ".NS", "BSE" for ".BO", and "NSE" for bare symbols (the default market).
func Exchange(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, ".BO"):
		return "BSE"
	default:
		return "NSE"
	}
}

// QualifySymbol appends the NSE suffix when the symbol carries no
// exchange qualifier.
func QualifySymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	if strings.HasSuffix(symbol, ".NS") || strings.HasSuffix(symbol, ".BO") {
		return symbol
	}
	return symbol + ".NS"
}
