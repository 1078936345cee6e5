package dtype

// PType is a physical fixed-width numeric type.
type PType uint8

const (
	U8 PType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

var ptypeNames = [...]string{
	U8:  "u8",
	U16: "u16",
	U32: "u32",
	U64: "u64",
	I8:  "i8",
	I16: "i16",
	I32: "i32",
	I64: "i64",
	F32: "f32",
	F64: "f64",
}

func (p PType) String() string {
	if int(p) < len(ptypeNames) {
		return ptypeNames[p]
	}
	return "ptype(" + itoa(int(p)) + ")"
}

// BitWidth returns the width of the type in bits.
func (p PType) BitWidth() int {
	switch p {
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32, F32:
		return 32
	default:
		return 64
	}
}

// IsSignedInt reports whether p is a signed integer.
func (p PType) IsSignedInt() bool { return p >= I8 && p <= I64 }

// IsUnsignedInt reports whether p is an unsigned integer.
func (p PType) IsUnsignedInt() bool { return p <= U64 }

// IsInt reports whether p is an integer.
func (p PType) IsInt() bool { return p <= I64 }

// IsFloat reports whether p is a floating point type.
func (p PType) IsFloat() bool { return p == F32 || p == F64 }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
