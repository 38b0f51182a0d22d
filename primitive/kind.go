package primitive

import (
	"math"
	"math/big"
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindVoid
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindTime
	KindDuration
	KindBigInt
	KindBigFloat

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// IsPrimitive reports whether k is a true primitive (boolean, integer, float or void),
// as opposed to a recognized immutable scalar such as string or time.Time.
func (k KindEnum) IsPrimitive() bool {
	switch k {
	default:
		return false
	case KindVoid, KindBool:
		return true
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	}
}

// IsScalar reports whether k is a recognized immutable scalar.
func (k KindEnum) IsScalar() bool {
	switch k {
	default:
		return false
	case KindString, KindTime, KindDuration, KindBigInt, KindBigFloat:
		return true
	}
}

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt, KindUint:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	case KindFloat32:
		return 32
	case KindFloat64:
		return 64
	}
}

var (
	names = map[KindEnum]string{
		KindVoid:     "void",
		KindBool:     "bool",
		KindInt:      "int",
		KindInt8:     "int8",
		KindInt16:    "int16",
		KindInt32:    "int32",
		KindInt64:    "int64",
		KindUint:     "uint",
		KindUint8:    "uint8",
		KindUint16:   "uint16",
		KindUint32:   "uint32",
		KindUint64:   "uint64",
		KindFloat32:  "float32",
		KindFloat64:  "float64",
		KindString:   "string",
		KindTime:     "time.Time",
		KindDuration: "time.Duration",
		KindBigInt:   "big.Int",
		KindBigFloat: "big.Float",
	}

	byName = func() map[string]KindEnum {
		m := make(map[string]KindEnum, len(names))
		for k, n := range names {
			m[n] = k
		}
		return m
	}()
)

// Name returns the Go spelling of the kind, e.g. "int32" or "time.Time".
// The zero KindEnum has no name.
func (k KindEnum) Name() string {
	return names[k]
}

// FromName is the inverse of KindEnum.Name.
func FromName(name string) (KindEnum, bool) {
	k, ok := byName[name]
	return k, ok
}

var (
	voidType     = reflect.TypeOf((*struct{})(nil)).Elem()
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
)

// ReflectType returns the native Go type carrying values of kind k.
// Big numbers are carried by pointer, the way math/big is used.
func (k KindEnum) ReflectType() reflect.Type {
	switch k {
	case KindVoid:
		return voidType
	case KindBool:
		return reflect.TypeOf(false)
	case KindInt:
		return reflect.TypeOf(int(0))
	case KindInt8:
		return reflect.TypeOf(int8(0))
	case KindInt16:
		return reflect.TypeOf(int16(0))
	case KindInt32:
		return reflect.TypeOf(int32(0))
	case KindInt64:
		return reflect.TypeOf(int64(0))
	case KindUint:
		return reflect.TypeOf(uint(0))
	case KindUint8:
		return reflect.TypeOf(uint8(0))
	case KindUint16:
		return reflect.TypeOf(uint16(0))
	case KindUint32:
		return reflect.TypeOf(uint32(0))
	case KindUint64:
		return reflect.TypeOf(uint64(0))
	case KindFloat32:
		return reflect.TypeOf(float32(0))
	case KindFloat64:
		return reflect.TypeOf(float64(0))
	case KindString:
		return reflect.TypeOf("")
	case KindTime:
		return reflect.TypeOf(time.Time{})
	case KindDuration:
		return reflect.TypeOf(time.Duration(0))
	case KindBigInt:
		return reflect.PointerTo(bigIntType)
	case KindBigFloat:
		return reflect.PointerTo(bigFloatType)
	default:
		return nil
	}
}

func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	// check if true primitive type
	switch rtype {
	case voidType:
		return KindVoid
	case reflect.TypeOf(int(0)):
		return KindInt
	case reflect.TypeOf(int8(0)):
		return KindInt8
	case reflect.TypeOf(int16(0)):
		return KindInt16
	case reflect.TypeOf(int32(0)):
		return KindInt32
	case reflect.TypeOf(int64(0)):
		return KindInt64
	case reflect.TypeOf(uint(0)):
		return KindUint
	case reflect.TypeOf(uint8(0)):
		return KindUint8
	case reflect.TypeOf(uint16(0)):
		return KindUint16
	case reflect.TypeOf(uint32(0)):
		return KindUint32
	case reflect.TypeOf(uint64(0)):
		return KindUint64
	case reflect.TypeOf(float32(0)):
		return KindFloat32
	case reflect.TypeOf(float64(0)):
		return KindFloat64
	case reflect.TypeOf(false):
		return KindBool
	case reflect.TypeOf(""):
		return KindString
	case reflect.TypeOf(time.Time{}):
		return KindTime
	case reflect.TypeOf(time.Duration(0)):
		return KindDuration
	case bigIntType, reflect.PointerTo(bigIntType):
		return KindBigInt
	case bigFloatType, reflect.PointerTo(bigFloatType):
		return KindBigFloat
	}

	return 0
}
