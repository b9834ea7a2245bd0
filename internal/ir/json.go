package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire shapes:
//
//	type:   {"basic": s} | {"enum": fullname} | {"message": fullname}
//	        | {"map": {"keyType": type, "valueType": type}}
//	field:  basic fields carry "oneof": false; oneof groups carry
//	        "oneof": [basic field...]
//
// Nil sequences and nil Comments encode as []. Decoding normalizes empty
// sequences back to nil so a decoded spec compares equal to a built one.

// MarshalJSON implements json.Marshaler.
func (t BasicType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Basic Scalar `json:"basic"`
	}{t.Basic})
}

// MarshalJSON implements json.Marshaler.
func (t EnumType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Enum string `json:"enum"`
	}{t.Enum})
}

// MarshalJSON implements json.Marshaler.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string `json:"message"`
	}{t.Message})
}

type mapTypeBody struct {
	KeyType   BasicType `json:"keyType"`
	ValueType Type      `json:"valueType"`
}

// MarshalJSON implements json.Marshaler.
func (t MapType) MarshalJSON() ([]byte, error) {
	if t.ValueType == nil {
		return nil, fmt.Errorf("map type: missing value type")
	}
	return json.Marshal(struct {
		Map mapTypeBody `json:"map"`
	}{mapTypeBody{KeyType: t.KeyType, ValueType: t.ValueType}})
}

// UnmarshalType decodes one type object. The object must carry exactly
// one of the keys basic, enum, map or message.
func UnmarshalType(data []byte) (Type, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("type: expected exactly one of basic, enum, map, message; got %d keys", len(raw))
	}
	for key, body := range raw {
		switch key {
		case "basic":
			var s Scalar
			if err := json.Unmarshal(body, &s); err != nil {
				return nil, fmt.Errorf("type.basic: %w", err)
			}
			if !ValidScalars[s] {
				return nil, fmt.Errorf("type.basic: unknown scalar %q", s)
			}
			return BasicType{Basic: s}, nil
		case "enum":
			var name string
			if err := json.Unmarshal(body, &name); err != nil {
				return nil, fmt.Errorf("type.enum: %w", err)
			}
			return EnumType{Enum: name}, nil
		case "message":
			var name string
			if err := json.Unmarshal(body, &name); err != nil {
				return nil, fmt.Errorf("type.message: %w", err)
			}
			return MessageType{Message: name}, nil
		case "map":
			var m struct {
				KeyType   json.RawMessage `json:"keyType"`
				ValueType json.RawMessage `json:"valueType"`
			}
			if err := json.Unmarshal(body, &m); err != nil {
				return nil, fmt.Errorf("type.map: %w", err)
			}
			key, err := UnmarshalType(m.KeyType)
			if err != nil {
				return nil, fmt.Errorf("type.map.keyType: %w", err)
			}
			basic, ok := key.(BasicType)
			if !ok {
				return nil, fmt.Errorf("type.map.keyType: must be a basic type")
			}
			val, err := UnmarshalType(m.ValueType)
			if err != nil {
				return nil, fmt.Errorf("type.map.valueType: %w", err)
			}
			return MapType{KeyType: basic, ValueType: val}, nil
		default:
			return nil, fmt.Errorf("type: unknown kind %q", key)
		}
	}
	panic("unreachable")
}

// MarshalJSON implements json.Marshaler.
func (c Comments) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Comments) UnmarshalJSON(data []byte) error {
	var s []string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) == 0 {
		*c = nil
		return nil
	}
	*c = s
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f BasicField) MarshalJSON() ([]byte, error) {
	if f.Type == nil {
		return nil, fmt.Errorf("field %q: missing type", f.Name)
	}
	type plain BasicField
	return json.Marshal(struct {
		plain
		OneOf bool `json:"oneof"`
	}{plain: plain(f)})
}

// UnmarshalJSON implements json.Unmarshaler. A oneof group in place of a
// basic field is rejected.
func (f *BasicField) UnmarshalJSON(data []byte) error {
	type plain BasicField
	var aux struct {
		plain
		Type  json.RawMessage `json:"type"`
		OneOf bool            `json:"oneof"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.OneOf {
		return fmt.Errorf("field %q: oneof must be false on a basic field", aux.Name)
	}
	t, err := UnmarshalType(aux.Type)
	if err != nil {
		return fmt.Errorf("field %q: %w", aux.Name, err)
	}
	*f = BasicField(aux.plain)
	f.Type = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f OneOfField) MarshalJSON() ([]byte, error) {
	type plain OneOfField
	p := plain(f)
	p.OneOf = orEmpty(p.OneOf)
	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *OneOfField) UnmarshalJSON(data []byte) error {
	type plain OneOfField
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = OneOfField(p)
	f.OneOf = nilIfEmpty(f.OneOf)
	return nil
}

// UnmarshalField decodes one field object, dispatching on the shape of
// its "oneof" key.
func UnmarshalField(data []byte) (Field, error) {
	var probe struct {
		OneOf json.RawMessage `json:"oneof"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("field: %w", err)
	}
	if bytes.HasPrefix(bytes.TrimSpace(probe.OneOf), []byte("[")) {
		var of OneOfField
		if err := json.Unmarshal(data, &of); err != nil {
			return nil, err
		}
		return of, nil
	}
	var bf BasicField
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, err
	}
	return bf, nil
}

// MarshalJSON implements json.Marshaler.
func (m MessageSpec) MarshalJSON() ([]byte, error) {
	type plain MessageSpec
	p := plain(m)
	p.Fields = orEmpty(p.Fields)
	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MessageSpec) UnmarshalJSON(data []byte) error {
	type plain MessageSpec
	var aux struct {
		plain
		Fields []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = MessageSpec(aux.plain)
	m.Fields = nil
	for i, raw := range aux.Fields {
		f, err := UnmarshalField(raw)
		if err != nil {
			return fmt.Errorf("message %q: fields[%d]: %w", aux.Fullname, i, err)
		}
		m.Fields = append(m.Fields, f)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e EnumSpec) MarshalJSON() ([]byte, error) {
	type plain EnumSpec
	p := plain(e)
	p.Values = orEmpty(p.Values)
	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *EnumSpec) UnmarshalJSON(data []byte) error {
	type plain EnumSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = EnumSpec(p)
	e.Values = nilIfEmpty(e.Values)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s ServiceSpec) MarshalJSON() ([]byte, error) {
	type plain ServiceSpec
	p := plain(s)
	p.Methods = orEmpty(p.Methods)
	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ServiceSpec) UnmarshalJSON(data []byte) error {
	type plain ServiceSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ServiceSpec(p)
	s.Methods = nilIfEmpty(s.Methods)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s ProtoSpec) MarshalJSON() ([]byte, error) {
	type plain ProtoSpec
	p := plain(s)
	p.Enums = orEmpty(p.Enums)
	p.Messages = orEmpty(p.Messages)
	p.Services = orEmpty(p.Services)
	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ProtoSpec) UnmarshalJSON(data []byte) error {
	type plain ProtoSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ProtoSpec(p)
	s.Enums = nilIfEmpty(s.Enums)
	s.Messages = nilIfEmpty(s.Messages)
	s.Services = nilIfEmpty(s.Services)
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
