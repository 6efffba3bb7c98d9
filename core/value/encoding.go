package value

import (
	"encoding/binary"

	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"golang.org/x/xerrors"
)

// Encode returns the binary form of the value: its type byte followed by the
// payload. Named keys are written in lexicographical order so that the same
// value always encodes to the same bytes.
func Encode(v Value) ([]byte, error) {
	enc := &encoder{}

	err := enc.value(v)
	if err != nil {
		return nil, err
	}

	return enc.buf, nil
}

// Decode reads a value from its binary form. Trailing bytes are an error.
func Decode(data []byte) (Value, error) {
	dec := &decoder{data: data}

	v, err := dec.value()
	if err != nil {
		return nil, err
	}

	if dec.pos != len(data) {
		return nil, xerrors.Errorf("%d trailing bytes", len(data)-dec.pos)
	}

	return v, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) uint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) uint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *encoder) bytes(b []byte) {
	e.uint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) uref(u uref.URef) {
	addr := u.Addr()
	e.buf = append(e.buf, addr[:]...)
	e.buf = append(e.buf, byte(u.Rights()))
}

func (e *encoder) namedKeys(nk NamedKeys) {
	e.uint32(uint32(len(nk)))

	for _, name := range nk.Names() {
		e.bytes([]byte(name))
		e.buf = append(e.buf, nk[name].Bytes()...)
	}
}

func (e *encoder) value(v Value) error {
	if v == nil {
		return xerrors.New("nil value")
	}

	e.buf = append(e.buf, byte(v.Type()))

	switch val := v.(type) {
	case Unit:
	case Int32:
		e.uint32(uint32(val))
	case UInt64:
		e.uint64(uint64(val))
	case U256:
		e.buf = append(e.buf, val.Bytes()...)
	case U512:
		e.buf = append(e.buf, val.Bytes()...)
	case String:
		e.bytes([]byte(val))
	case Bytes:
		e.bytes(val)
	case Key:
		e.buf = append(e.buf, val.Key.Bytes()...)
	case Option:
		if val.IsNone() {
			e.buf = append(e.buf, 0)
			return nil
		}

		e.buf = append(e.buf, 1)
		return e.value(val.Some)
	case Account:
		e.buf = append(e.buf, val.PublicKey[:]...)
		e.namedKeys(val.NamedKeys)
		e.uref(val.MainPurse.Value())
	case Contract:
		e.bytes([]byte(val.Name))
		e.namedKeys(val.NamedKeys)
		e.uint64(val.ProtocolVersion)
	default:
		return xerrors.Errorf("unsupported value '%T'", v)
	}

	return nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, xerrors.Errorf("unexpected end of data: need %d bytes at %d", n, d.pos)
	}

	out := d.data[d.pos : d.pos+n]
	d.pos += n

	return out, nil
}

func (d *decoder) byte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, err
	}

	b, err := d.take(int(n))
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out, nil
}

func (d *decoder) key() (key.Key, error) {
	b, err := d.take(key.Size)
	if err != nil {
		return key.Key{}, err
	}
	return key.FromBytes(b)
}

func (d *decoder) uref() (uref.URef, error) {
	b, err := d.take(uref.AddrLength + 1)
	if err != nil {
		return uref.URef{}, err
	}

	var addr uref.Addr
	copy(addr[:], b)

	rights := uref.AccessRights(b[uref.AddrLength])
	if !rights.Valid() {
		return uref.URef{}, xerrors.Errorf("invalid rights %d", rights)
	}

	return uref.New(addr, rights), nil
}

func (d *decoder) namedKeys() (NamedKeys, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, err
	}

	var nk NamedKeys
	if n > 0 {
		nk = make(NamedKeys, n)
	}

	for i := uint32(0); i < n; i++ {
		name, err := d.bytes()
		if err != nil {
			return nil, xerrors.Errorf("failed to read name: %v", err)
		}

		k, err := d.key()
		if err != nil {
			return nil, xerrors.Errorf("failed to read key of '%s': %v", name, err)
		}

		nk[string(name)] = k
	}

	return nk, nil
}

func (d *decoder) value() (Value, error) {
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}

	switch Type(tag) {
	case TypeUnit:
		return Unit{}, nil
	case TypeInt32:
		v, err := d.uint32()
		return Int32(v), err
	case TypeUInt64:
		v, err := d.uint64()
		return UInt64(v), err
	case TypeU256:
		v, n, err := DecodeU256(d.data[d.pos:])
		d.pos += n
		return v, err
	case TypeU512:
		v, n, err := DecodeU512(d.data[d.pos:])
		d.pos += n
		return v, err
	case TypeString:
		b, err := d.bytes()
		return String(b), err
	case TypeBytes:
		b, err := d.bytes()
		return Bytes(b), err
	case TypeKey:
		k, err := d.key()
		return NewKey(k), err
	case TypeOption:
		flag, err := d.byte()
		if err != nil {
			return nil, err
		}

		switch flag {
		case 0:
			return None(), nil
		case 1:
			inner, err := d.value()
			if err != nil {
				return nil, err
			}
			return Some(inner), nil
		default:
			return nil, xerrors.Errorf("invalid option flag %d", flag)
		}
	case TypeAccount:
		return d.account()
	case TypeContract:
		return d.contract()
	default:
		return nil, xerrors.Errorf("unknown value type %d", tag)
	}
}

func (d *decoder) account() (Value, error) {
	pk, err := d.take(32)
	if err != nil {
		return nil, err
	}

	acct := Account{}
	copy(acct.PublicKey[:], pk)

	acct.NamedKeys, err = d.namedKeys()
	if err != nil {
		return nil, xerrors.Errorf("failed to read named keys: %v", err)
	}

	purse, err := d.uref()
	if err != nil {
		return nil, xerrors.Errorf("failed to read main purse: %v", err)
	}

	acct.MainPurse = uref.NewPurseID(purse)

	return acct, nil
}

func (d *decoder) contract() (Value, error) {
	name, err := d.bytes()
	if err != nil {
		return nil, xerrors.Errorf("failed to read name: %v", err)
	}

	nk, err := d.namedKeys()
	if err != nil {
		return nil, xerrors.Errorf("failed to read named keys: %v", err)
	}

	version, err := d.uint64()
	if err != nil {
		return nil, xerrors.Errorf("failed to read version: %v", err)
	}

	return Contract{Name: string(name), NamedKeys: nk, ProtocolVersion: version}, nil
}
