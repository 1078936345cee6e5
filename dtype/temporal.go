package dtype

import (
	"encoding/binary"
	"fmt"
)

// Extension IDs of the temporal types.
const (
	TimestampID = "vortex.timestamp"
	DateID      = "vortex.date"
	TimeID      = "vortex.time"
)

// TimeUnit is the resolution of a temporal value. Its numeric value is the
// first byte of the extension metadata.
type TimeUnit uint8

const (
	Nanoseconds  TimeUnit = 0x00
	Microseconds TimeUnit = 0x01
	Milliseconds TimeUnit = 0x02
	Seconds      TimeUnit = 0x03
	Days         TimeUnit = 0x04
)

func (u TimeUnit) String() string {
	switch u {
	case Nanoseconds:
		return "ns"
	case Microseconds:
		return "us"
	case Milliseconds:
		return "ms"
	case Seconds:
		return "s"
	case Days:
		return "D"
	default:
		return fmt.Sprintf("unit(%d)", uint8(u))
	}
}

func (u TimeUnit) valid() bool { return u <= Days }

// TemporalMetadata is the decoded metadata of a temporal extension type.
type TemporalMetadata struct {
	Unit TimeUnit

	// TimeZone is only meaningful for timestamps. Empty means zone-naive.
	TimeZone string
}

// EncodeTimestampMetadata encodes timestamp metadata:
// the unit byte, a little-endian uint16 zone length, then the zone bytes.
// A zone-naive timestamp encodes as three bytes, e.g. 03 00 00 for seconds.
func EncodeTimestampMetadata(unit TimeUnit, tz string) []byte {
	buf := make([]byte, 3, 3+len(tz))
	buf[0] = byte(unit)
	binary.LittleEndian.PutUint16(buf[1:3], uint16(len(tz)))
	return append(buf, tz...)
}

// DecodeTemporalMetadata decodes the metadata of a temporal extension type.
func DecodeTemporalMetadata(id string, meta []byte) (TemporalMetadata, error) {
	if len(meta) == 0 {
		return TemporalMetadata{}, fmt.Errorf("%w: %s has no metadata", ErrInvalidMetadata, id)
	}
	unit := TimeUnit(meta[0])
	if !unit.valid() {
		return TemporalMetadata{}, fmt.Errorf("%w: unknown time unit %d", ErrInvalidMetadata, meta[0])
	}

	switch id {
	case DateID, TimeID:
		return TemporalMetadata{Unit: unit}, nil
	case TimestampID:
		if len(meta) < 3 {
			return TemporalMetadata{}, fmt.Errorf("%w: timestamp metadata too short (%d bytes)", ErrInvalidMetadata, len(meta))
		}
		n := int(binary.LittleEndian.Uint16(meta[1:3]))
		if len(meta) != 3+n {
			return TemporalMetadata{}, fmt.Errorf("%w: timestamp zone length %d does not match %d trailing bytes", ErrInvalidMetadata, n, len(meta)-3)
		}
		return TemporalMetadata{Unit: unit, TimeZone: string(meta[3:])}, nil
	default:
		return TemporalMetadata{}, fmt.Errorf("%w: %s is not a temporal type", ErrInvalidMetadata, id)
	}
}

// IsTemporal reports whether the extension ID names a temporal type.
func IsTemporal(id string) bool {
	return id == TimestampID || id == DateID || id == TimeID
}

// NewTimestamp returns a timestamp extension over i64 storage.
func NewTimestamp(unit TimeUnit, tz string, n Nullability) DType {
	return Extension{
		ID:       TimestampID,
		Storage:  NewInt(64, n),
		Metadata: EncodeTimestampMetadata(unit, tz),
	}
}

// NewDate returns a date extension. Days are stored as i32, milliseconds as i64.
func NewDate(unit TimeUnit, n Nullability) DType {
	storage := NewInt(64, n)
	if unit == Days {
		storage = NewInt(32, n)
	}
	return Extension{ID: DateID, Storage: storage, Metadata: []byte{byte(unit)}}
}

// NewTime returns a time-of-day extension. Seconds and milliseconds are
// stored as i32, finer units as i64.
func NewTime(unit TimeUnit, n Nullability) DType {
	storage := NewInt(64, n)
	if unit == Seconds || unit == Milliseconds {
		storage = NewInt(32, n)
	}
	return Extension{ID: TimeID, Storage: storage, Metadata: []byte{byte(unit)}}
}
