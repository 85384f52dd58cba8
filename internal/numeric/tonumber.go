package numeric

import "math"

// ToInt32 implements the ECMAScript ToInt32 abstract operation.
func ToInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	u := toUint32Bits(f)
	if u >= 1<<31 {
		return int32(int64(u) - (1 << 32))
	}
	return int32(u)
}

// ToUint32 implements the ECMAScript ToUint32 abstract operation.
func ToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	return toUint32Bits(f)
}

func toUint32Bits(f float64) uint32 {
	// ToInteger: truncate toward zero.
	sign := float64(1)
	if f < 0 {
		sign = -1
		f = -f
	}
	f = math.Floor(f)
	m := math.Mod(sign*f, 4294967296) // 2^32
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// ToInt8 implements the ECMAScript ToInt8 abstract operation.
func ToInt8(f float64) int8 {
	u := ToUint32(f) & 0xff
	if u >= 1<<7 {
		return int8(int32(u) - 1<<8)
	}
	return int8(u)
}

// ToUint8 implements the ECMAScript ToUint8 abstract operation.
func ToUint8(f float64) uint8 {
	return uint8(ToUint32(f) & 0xff)
}

// ToUint8Clamp implements the ECMAScript ToUint8Clamp abstract operation
// used by Uint8ClampedArray.
func ToUint8Clamp(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	lower := math.Floor(f)
	diff := f - lower
	if diff < 0.5 {
		return uint8(lower)
	}
	if diff > 0.5 {
		return uint8(lower + 1)
	}
	// Round to even.
	if int(lower)%2 == 0 {
		return uint8(lower)
	}
	return uint8(lower + 1)
}

// ToInt16 implements the ECMAScript ToInt16 abstract operation.
func ToInt16(f float64) int16 {
	u := ToUint32(f) & 0xffff
	if u >= 1<<15 {
		return int16(int32(u) - 1<<16)
	}
	return int16(u)
}

// ToUint16 implements the ECMAScript ToUint16 abstract operation.
func ToUint16(f float64) uint16 {
	return uint16(ToUint32(f) & 0xffff)
}
