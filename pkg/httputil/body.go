package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// MaxBodyBytes caps every request body read by ReadObject and DecodeBody.
const MaxBodyBytes = 1 << 20

var (
	// ErrInvalidBody is returned when a request body cannot be turned into a
	// JSON object.
	ErrInvalidBody = errors.New("request body is not a JSON object")
	// ErrBodyTooLarge is returned once more than MaxBodyBytes have been read.
	ErrBodyTooLarge = errors.New("request body too large")
)

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	if errors.Is(err, multipart.ErrMessageTooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, MaxBodyBytes)
	}
	return fmt.Errorf("%w: %v", ErrInvalidBody, err)
}

// ReadObject reads the request body into a generic JSON object. Accepted forms:
//   - a JSON object;
//   - a JSON string literal whose content is itself a JSON object;
//   - url-encoded or multipart form data, where each value is parsed as JSON
//     when possible and kept as a plain string otherwise.
//
// An empty body yields an empty object. Reading stops with ErrBodyTooLarge
// after MaxBodyBytes, whichever form the body takes.
func ReadObject(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		r.Body = http.NoBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		return formToObject(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, bodyError(err)
		}
		return formToObject(r.MultipartForm.Value), nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrInvalidBody
	}
	return obj, nil
}

// DecodeBody normalizes the request body with ReadObject and decodes it into
// dst. A value of the wrong JSON type is reported as a *validator.ValidationError
// on that field.
func DecodeBody(r *http.Request, dst any) error {
	obj, err := ReadObject(r)
	if err != nil {
		return err
	}
	return DecodeObject(obj, dst)
}

// DecodeObject decodes an already-normalized object into dst.
func DecodeObject(obj map[string]any, dst any) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return validator.NewValidationError(typeErr.Field, "must be of type "+jsonTypeName(typeErr.Type.Kind().String()))
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

func formToObject(values url.Values) map[string]any {
	obj := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(vals[0]), &parsed); err == nil {
			obj[key] = parsed
		} else {
			obj[key] = vals[0]
		}
	}
	return obj
}

func jsonTypeName(kind string) string {
	switch kind {
	case "struct", "map":
		return "object"
	case "slice", "array":
		return "array"
	case "int", "int32", "int64", "float32", "float64":
		return "number"
	case "ptr":
		return "object"
	default:
		return kind
	}
}
