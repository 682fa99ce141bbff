package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"slices"
	"strings"
)

// defaultFieldMessage stands in for a validation entry without a msg.
const defaultFieldMessage = "Validation error"

// IsJSON reports whether a Content-Type header denotes JSON.
func IsJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), contentTypeJSON)
	}

	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// decodeSuccess decodes a 2xx body into out. A 204, a nil out, an empty body
// or a non-JSON content type decode nothing.
func decodeSuccess(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent || out == nil || !IsJSON(resp.Header.Get("Content-Type")) {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

type errorBody struct {
	message string
	data    any
	fields  []FieldError
}

// parseErrorBody extracts a message from the error body shapes the API and
// its proxies produce:
//   - {"detail": "text"}
//   - {"detail": [{"loc": [...], "msg": "...", "type": "..."}]}
//   - {"error": {"code", "message", "details": {field: msg}}} and {"code", "message"}
//   - any non-JSON text, kept as {"detail": text}
//
// A body labelled JSON that does not parse yields no message.
func parseErrorBody(contentType string, raw []byte) errorBody {
	if !IsJSON(contentType) {
		text := strings.TrimSpace(string(raw))

		return errorBody{
			message: text,
			data:    map[string]any{"detail": text},
		}
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return errorBody{}
	}

	body := errorBody{data: data}

	obj, ok := data.(map[string]any)
	if !ok {
		return body
	}

	if detail, ok := obj["detail"]; ok {
		switch d := detail.(type) {
		case string:
			body.message = d
		case []any:
			body.fields = parseDetailList(d)
			body.message = joinMessages(body.fields)
		}

		return body
	}

	if envelope, ok := obj["error"].(map[string]any); ok {
		body.message, _ = envelope["message"].(string)
		if details, ok := envelope["details"].(map[string]any); ok {
			body.fields = parseDetailMap(details)
		}

		return body
	}

	body.message, _ = obj["message"].(string)

	return body
}

func parseDetailList(items []any) []FieldError {
	fields := make([]FieldError, 0, len(items))

	for _, item := range items {
		entry, _ := item.(map[string]any)

		f := FieldError{Message: defaultFieldMessage}
		if msg, ok := entry["msg"].(string); ok && msg != "" {
			f.Message = msg
		}
		f.Type, _ = entry["type"].(string)

		if loc, ok := entry["loc"].([]any); ok {
			for _, part := range loc {
				f.Location = append(f.Location, fmt.Sprint(part))
			}
		}

		fields = append(fields, f)
	}

	return fields
}

func parseDetailMap(details map[string]any) []FieldError {
	fields := make([]FieldError, 0, len(details))

	for _, name := range slices.Sorted(maps.Keys(details)) {
		msg := details[name]
		text, ok := msg.(string)
		if !ok {
			text = fmt.Sprint(msg)
		}
		fields = append(fields, FieldError{Location: []string{name}, Message: text})
	}

	return fields
}
