package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// redactedFields are attribute keys whose values never reach a log line. The
// Zapallo API key shows up as the X-API-Key header, the api_key attribute
// and the APIKey field of the client config.
var redactedFields = []string{
	"api_key", "apiKey", "apikey", "APIKey",
	"X-API-Key", "x-api-key",
	"Authorization", "authorization", "auth",
	"Cookie", "cookie", "Set-Cookie", "session",
	"password", "secret", "token", "access_token", "accessToken",
	"private_key", "privateKey", "secret_key", "secretKey",
}

// redactedValues catch credentials logged under an unexpected key.
var redactedValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^(bearer|basic)\s+.+$`),
}

// DefaultRedactOptions returns the masq options applied to json and text output.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(redactedFields)+len(redactedValues)+2)

	for _, name := range redactedFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	opts = append(opts, masq.WithFieldPrefix("secret"), masq.WithFieldPrefix("private"))

	for _, re := range redactedValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return opts
}

// NewReplaceAttr creates a slog ReplaceAttr func that redacts sensitive values.
// Extra options extend DefaultRedactOptions.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
