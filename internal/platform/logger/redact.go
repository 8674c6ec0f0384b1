package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// Keys are matched by substring after lower-casing.
var (
	// Credentials never reach the log.
	redactKeys = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "dsn"}
	// Learner identity is pseudonymised; the hash still correlates lines.
	hashKeys = []string{"learner_id", "user_id"}
)

type redactionConfig struct {
	enabled bool
	salt    string
}

var (
	redactOnce sync.Once
	redaction  redactionConfig
)

// LOG_REDACTION_ENABLED=false turns the rules off for local debugging.
func redactionSettings() redactionConfig {
	redactOnce.Do(func() {
		redaction.enabled = true
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			redaction.enabled = false
		}
		redaction.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return redaction
}

func sanitizeKVs(kv []interface{}) []interface{} {
	if len(kv) == 0 || !redactionSettings().enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := toString(kv[i])
		out = append(out, key, sanitizeValue(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func sanitizeValue(key string, val interface{}) interface{} {
	switch {
	case matchesAny(key, redactKeys):
		return redacted
	case matchesAny(key, hashKeys):
		return hashValue(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = sanitizeValue(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func matchesAny(key string, patterns []string) bool {
	if key == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

func hashValue(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(redactionSettings().salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
