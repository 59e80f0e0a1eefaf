package wellets

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"

	"github.com/pkg/errors"
)

// jsonObjectWriter builds a JSON object whose fields keep the order they are
// written in. The first marshalling error is kept and returned by MarshalJSON.
type jsonObjectWriter struct {
	fields [][]byte
	err    error
}

// Append adds a field.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	k, err := json.Marshal(key)
	if err == nil {
		var v []byte
		if v, err = json.Marshal(value); err == nil {
			w.fields = append(w.fields, slices.Concat(k, []byte{':'}, v))
			return w
		}
	}
	w.err = errors.Wrapf(err, "cannot marshal field %q", key)
	return w
}

// Optional adds a field unless value is the zero value of its type.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return slices.Concat([]byte{'{'}, bytes.Join(w.fields, []byte{','}), []byte{'}'}), nil
}
