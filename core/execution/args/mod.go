// Package args defines the positional arguments of a contract call and their
// wire formats.
//
// The binary form is a u32 count followed by each argument as a u32-length
// prefixed byte array holding the encoded value. The JSON form is the one
// accepted by the command line:
//
//	[{"name": "amount", "value": {"u512": "12345"}}]
package args

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

// List is the positional arguments of a call.
type List []value.Value

// New returns the list of the values.
func New(values ...value.Value) List {
	return List(values)
}

// Len returns the number of arguments.
func (l List) Len() int {
	return len(l)
}

// U512 returns the argument at the index as a 512-bit integer.
func (l List) U512(index int) (value.U512, error) {
	v, err := l.at(index)
	if err != nil {
		return value.U512{}, err
	}

	u, ok := v.(value.U512)
	if !ok {
		return value.U512{}, xerrors.Errorf("argument %d: expected u512, got %s", index, v.Type())
	}

	return u, nil
}

// URef returns the argument at the index as a reference. The argument must be
// a key value of a reference.
func (l List) URef(index int) (uref.URef, error) {
	v, err := l.at(index)
	if err != nil {
		return uref.URef{}, err
	}

	kv, ok := v.(value.Key)
	if !ok {
		return uref.URef{}, xerrors.Errorf("argument %d: expected key, got %s", index, v.Type())
	}

	u, ok := kv.Key.AsURef()
	if !ok {
		return uref.URef{}, xerrors.Errorf("argument %d: expected uref, got %s key", index, kv.Key.Kind())
	}

	return u, nil
}

func (l List) at(index int) (value.Value, error) {
	if index < 0 || index >= len(l) {
		return nil, xerrors.Errorf("missing argument %d of %d", index, len(l))
	}

	return l[index], nil
}

// Encode returns the binary form of the list.
func (l List) Encode() ([]byte, error) {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(l)))

	for i, v := range l {
		data, err := value.Encode(v)
		if err != nil {
			return nil, xerrors.Errorf("failed to encode argument %d: %v", i, err)
		}

		out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
		out = append(out, data...)
	}

	return out, nil
}

// Decode reads a list from its binary form.
func Decode(data []byte) (List, error) {
	if len(data) < 4 {
		return nil, xerrors.New("missing argument count")
	}

	count := binary.LittleEndian.Uint32(data)
	pos := 4

	var list List
	for i := uint32(0); i < count; i++ {
		if len(data)-pos < 4 {
			return nil, xerrors.Errorf("argument %d: missing length", i)
		}

		n := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4

		if len(data)-pos < n {
			return nil, xerrors.Errorf("argument %d: expected %d bytes", i, n)
		}

		v, err := value.Decode(data[pos : pos+n])
		if err != nil {
			return nil, xerrors.Errorf("argument %d: %v", i, err)
		}

		list = append(list, v)
		pos += n
	}

	if pos != len(data) {
		return nil, xerrors.Errorf("%d trailing bytes", len(data)-pos)
	}

	return list, nil
}

type jsonArg struct {
	Name  string                     `json:"name"`
	Value map[string]json.RawMessage `json:"value"`
}

// ParseJSON reads a list from its JSON form. Each value is an object with a
// single field naming the type: int32, u64, u512, int_value, long_value,
// big_int, string, bytes, account, key, uref or option.
func ParseJSON(data []byte) (List, error) {
	var raw []jsonArg

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	list := make(List, len(raw))
	for i, arg := range raw {
		v, err := parseValue(arg.Value)
		if err != nil {
			return nil, xerrors.Errorf("argument '%s': %v", arg.Name, err)
		}

		list[i] = v
	}

	return list, nil
}

func parseValue(obj map[string]json.RawMessage) (value.Value, error) {
	if len(obj) != 1 {
		return nil, xerrors.Errorf("expected one type field, got %d", len(obj))
	}

	for typ, raw := range obj {
		return parseTyped(typ, raw)
	}

	return nil, nil
}

func parseTyped(typ string, raw json.RawMessage) (value.Value, error) {
	switch typ {
	case "option", "optional_value":
		var inner map[string]json.RawMessage

		err := json.Unmarshal(raw, &inner)
		if err != nil {
			return nil, xerrors.Errorf("invalid option: %v", err)
		}

		if len(inner) == 0 {
			return value.None(), nil
		}

		v, err := parseValue(inner)
		if err != nil {
			return nil, err
		}

		return value.Some(v), nil
	}

	text, err := scalar(raw)
	if err != nil {
		return nil, xerrors.Errorf("invalid %s: %v", typ, err)
	}

	switch typ {
	case "int32", "int_value":
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, xerrors.Errorf("invalid %s: %v", typ, err)
		}
		return value.Int32(n), nil
	case "u64", "long_value":
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("invalid %s: %v", typ, err)
		}
		return value.UInt64(n), nil
	case "u512", "big_int":
		return value.ParseU512(text)
	case "string":
		return value.String(text), nil
	case "bytes", "bytes_value", "byte_array":
		b, err := hex.DecodeString(text)
		if err != nil {
			return nil, xerrors.Errorf("invalid %s: %v", typ, err)
		}
		return value.Bytes(b), nil
	case "account":
		b, err := hex.DecodeString(text)
		if err != nil || len(b) != 32 {
			return nil, xerrors.New("account must be 32 hex encoded bytes")
		}

		var addr [32]byte
		copy(addr[:], b)

		return value.NewKey(key.NewAccount(addr)), nil
	case "key", "uref":
		k, err := key.Parse(text)
		if err != nil {
			return nil, xerrors.Errorf("invalid %s: %v", typ, err)
		}
		return value.NewKey(k), nil
	default:
		return nil, xerrors.Errorf("unknown type '%s'", typ)
	}
}

// scalar accepts a JSON string or number, and the {"value": ...} object form
// of the big integers.
func scalar(raw json.RawMessage) (string, error) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}

	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String(), nil
	}

	var wrapped struct {
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Value != nil {
		return scalar(wrapped.Value)
	}

	return "", xerrors.Errorf("unsupported literal %s", string(raw))
}
