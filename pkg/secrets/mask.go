package secrets

import (
	"fmt"
	"strings"

	masker "github.com/goliatone/go-masker"

	"github.com/goliatone/go-blockstore/pkg/domain"
)

var sensitiveFields = []string{
	"token", "access_token", "refresh_token",
	"api_key", "apikey", "client_secret",
	"secret", "signing_key", "password",
	"passphrase", "private_key", "connection_string",
	"credentials",
}

var sensitiveSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(sensitiveFields))
	for _, field := range sensitiveFields {
		set[strings.ToLower(field)] = struct{}{}
	}
	return set
}()

func init() {
	// Register common secret-ish fields so masking uses sane defaults.
	for _, field := range sensitiveFields {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// MaskData returns a copy of a raw payload with every value under a
// sensitive key masked. It is a best effort guard for logging payloads whose
// schema is not known yet; payloads with a known schema should go through
// Obscure with the schema's secret paths instead.
func MaskData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	masked, _ := maskTree(data, false).(map[string]any)
	return masked
}

func maskTree(value any, sensitive bool) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = maskTree(item, sensitive || isSensitiveKey(key))
		}
		return out
	case domain.JSONMap:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = maskTree(item, sensitive || isSensitiveKey(key))
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = maskTree(item, sensitive)
		}
		return out
	default:
		if !sensitive {
			return value
		}
		return maskString(fmt.Sprint(v))
	}
}

func isSensitiveKey(key string) bool {
	_, ok := sensitiveSet[strings.ToLower(key)]
	return ok
}

func maskString(value string) string {
	if value == "" {
		return ""
	}
	// Use a conservative mask type; treating key names as mask types is unreliable.
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	// Fallback masking if no rule is registered.
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
