package arr

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/rotisserie/eris"
)

// jsonObjectWriter writes a JSON object whose fields keep the order they were
// appended in, so that ledger lines are stable and diffable.
// Its zero value is ready to use.
type jsonObjectWriter struct {
	body bytes.Buffer
	err  error
}

// Append writes key and the JSON encoding of value.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = eris.Wrapf(err, "invalid key %q", key)
		return w
	}
	v, err := json.Marshal(value)
	if err != nil {
		w.err = eris.Wrapf(err, "failed to marshal value for key %q", key)
		return w
	}
	if w.body.Len() > 0 {
		w.body.WriteByte(',')
	}
	w.body.Write(k)
	w.body.WriteByte(':')
	w.body.Write(v)
	return w
}

// Optional is Append, skipped when value is zero. Values with an IsZero
// method decide for themselves.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if z, ok := value.(interface{ IsZero() bool }); ok {
		if z.IsZero() {
			return w
		}
	} else if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// MarshalJSON returns the object, or the first error met while appending.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.body.Len()+2)
	out = append(out, '{')
	out = append(out, w.body.Bytes()...)
	return append(out, '}'), nil
}
