package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (v Variable) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("unresolved variable $%s", string(v))
}

func (n Number) MarshalJSON() ([]byte, error) { return []byte(n.String()), nil }

func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

func (b Boolean) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

func (e Enum) MarshalJSON() ([]byte, error) { return json.Marshal(string(e)) }

func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, item); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Unmarshal decodes JSON into a Value, keeping object key order.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Boolean(tok), nil
	case string:
		return String(tok), nil
	case json.Number:
		return Number{raw: tok.String()}, nil
	case json.Delim:
		switch tok {
		case '[':
			list := List{}
			for dec.More() {
				item, err := decode(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				item, err := decode(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
