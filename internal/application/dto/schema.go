package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSchemaMismatch el cuerpo no cumple el esquema esperado.
var ErrSchemaMismatch = errors.New("respuesta no cumple el esquema")

// Kind tipo JSON esperado de una clave.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "desconocido"
}

// Key describe una clave de un objeto JSON.
// Nullable admite null; Optional admite que la clave falte.
// Object valida objetos anidados; Items valida los elementos de un array de objetos.
type Key struct {
	Name     string
	Kind     Kind
	Nullable bool
	Optional bool
	Object   Schema
	Items    Schema
}

// Schema esquema estricto de un objeto JSON: claves requeridas, nulabilidad y tipos.
// Las claves no descritas se ignoran.
type Schema []Key

// Validate comprueba que raw sea un objeto que cumple s.
func (s Schema) Validate(raw []byte) error {
	return s.validate(raw, "$")
}

// ValidateArray comprueba que raw sea un array cuyos elementos cumplen s.
func (s Schema) ValidateArray(raw []byte) error {
	return s.validateArray(raw, "$")
}

func (s Schema) validate(raw []byte, path string) error {
	if kindOf(raw) != KindObject {
		return fmt.Errorf("%w: %s no es un objeto", ErrSchemaMismatch, path)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, path, err)
	}
	for _, k := range s {
		p := path + "." + k.Name
		v, ok := obj[k.Name]
		if !ok {
			if k.Optional {
				continue
			}
			return fmt.Errorf("%w: falta %s", ErrSchemaMismatch, p)
		}
		if isNull(v) {
			if k.Nullable || k.Optional {
				continue
			}
			return fmt.Errorf("%w: %s no admite null", ErrSchemaMismatch, p)
		}
		if got := kindOf(v); got != k.Kind {
			return fmt.Errorf("%w: %s es %s, se esperaba %s", ErrSchemaMismatch, p, got, k.Kind)
		}
		switch {
		case k.Kind == KindObject && k.Object != nil:
			if err := k.Object.validate(v, p); err != nil {
				return err
			}
		case k.Kind == KindArray && k.Items != nil:
			if err := k.Items.validateArray(v, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Schema) validateArray(raw []byte, path string) error {
	if kindOf(raw) != KindArray {
		return fmt.Errorf("%w: %s no es un array", ErrSchemaMismatch, path)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, path, err)
	}
	for i, item := range items {
		if err := s.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func kindOf(raw []byte) Kind {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return -1
	}
	switch raw[0] {
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case 't', 'f':
		return KindBool
	case 'n':
		return -1
	}
	return KindNumber
}
