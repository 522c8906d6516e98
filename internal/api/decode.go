package api

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"task-service/internal/service"
)

var (
	errInvalidUpdates = &service.ValidationError{Message: "Invalid updates"}
	errMalformedBody  = &service.ValidationError{Message: "Cannot parse JSON"}
)

// decodeClosed decodes a JSON object into the struct dst points to. Every key
// must match one of dst's json tags exactly; otherwise nothing is decoded.
// An empty body decodes to the zero value.
func decodeClosed(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return errMalformedBody
	}

	allowed := jsonFieldNames(reflect.TypeOf(dst).Elem())
	for key := range fields {
		if _, ok := allowed[key]; !ok {
			return errInvalidUpdates
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errMalformedBody
	}

	return nil
}

func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = struct{}{}
	}
	return names
}
