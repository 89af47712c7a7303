package logger

import "strings"

// secretKeys are log field names whose values are upload credentials and
// must never appear verbatim in logs.
var secretKeys = []string{"token", "secret", "password", "authorization"}

// RedactSecret masks a credential for safe logging, keeping a short prefix
// so operators can correlate entries with the tokens table.
// "Zx81kq..." becomes "Zx81***"; values of 4 characters or fewer are fully
// masked.
func RedactSecret(v string) string {
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}

func redactSecretValue(key, val string) string {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return RedactSecret(val)
		}
	}
	return val
}
