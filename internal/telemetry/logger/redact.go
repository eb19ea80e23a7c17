package logger

import (
	"log/slog"
	"strings"
)

// Attribute keys containing any of these are redacted.
var sensitiveKeyPatterns = []string{
	"private_key",
	"passphrase",
	"secret",
	"token",
	"password",
	"credential",
}

// Keys that match a pattern above but only ever carry names.
var safeKeys = map[string]struct{}{
	"secret_name":  {},
	"secret_names": {},
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive replaces attribute values that are, or look like,
// key material or credentials.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if ContainsPrivateKey(v) || (v != "" && IsSensitiveKey(a.Key)) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && ContainsPrivateKey(err.Error()) {
			return slog.String(a.Key, redactedValue)
		}
		if b, ok := a.Value.Any().([]byte); ok && (ContainsPrivateKey(string(b)) || (len(b) > 0 && IsSensitiveKey(a.Key))) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// RedactString returns the placeholder when value holds private key PEM.
func RedactString(value string) string {
	if ContainsPrivateKey(value) {
		return redactedValue
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if _, ok := safeKeys[keyLower]; ok {
		return false
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// ContainsPrivateKey reports whether value holds a PEM private key header,
// whatever the key type ("RSA PRIVATE KEY", "ENCRYPTED PRIVATE KEY", ...).
func ContainsPrivateKey(value string) bool {
	for {
		i := strings.Index(value, "-----BEGIN ")
		if i < 0 {
			return false
		}
		value = value[i+len("-----BEGIN "):]
		end := strings.Index(value, "-----")
		if end < 0 {
			return false
		}
		if strings.HasSuffix(value[:end], "PRIVATE KEY") {
			return true
		}
		value = value[end:]
	}
}
