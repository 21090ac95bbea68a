package model

import "time"

// PropertyID is the numeric tag of a message property.
type PropertyID uint16

// Well-known message property tags.
const (
	PropMessageClass        PropertyID = 0x001A
	PropSubject             PropertyID = 0x0037
	PropClientSubmitTime    PropertyID = 0x0039
	PropSenderName          PropertyID = 0x0C1A
	PropDisplayCc           PropertyID = 0x0E02
	PropDisplayTo           PropertyID = 0x0E04
	PropMessageDeliveryTime PropertyID = 0x0E06
	PropAttachCount         PropertyID = 0x0E13
	PropBody                PropertyID = 0x1000
	PropRTFCompressed       PropertyID = 0x1009
	PropBodyHTML            PropertyID = 0x1013
)

// ValueKind identifies the type carried by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindBinary
	KindInteger
	KindTimestamp
)

// Value is a typed property value as returned by a message store.
type Value struct {
	Kind ValueKind
	str  string
	bin  []byte
	num  int64
	ts   time.Time
}

// StringValue wraps a string property.
func StringValue(s string) Value {
	return Value{Kind: KindString, str: s}
}

// BinaryValue wraps a binary property.
func BinaryValue(b []byte) Value {
	return Value{Kind: KindBinary, bin: b}
}

// IntegerValue wraps an integer property.
func IntegerValue(n int64) Value {
	return Value{Kind: KindInteger, num: n}
}

// TimestampValue wraps a timestamp property.
func TimestampValue(t time.Time) Value {
	return Value{Kind: KindTimestamp, ts: t}
}

// AsString returns the value when it is a string property.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.str, true
}

// Bytes returns the value when it is a binary property.
func (v Value) Bytes() ([]byte, bool) {
	if v.Kind != KindBinary {
		return nil, false
	}
	return v.bin, true
}

// Int returns the value when it is an integer property.
func (v Value) Int() (int64, bool) {
	if v.Kind != KindInteger {
		return 0, false
	}
	return v.num, true
}

// Time returns the value when it is a timestamp property.
func (v Value) Time() (time.Time, bool) {
	if v.Kind != KindTimestamp {
		return time.Time{}, false
	}
	return v.ts, true
}

// PropertySet holds the properties read for one message.
type PropertySet map[PropertyID]Value

// Property returns the value stored under id.
func (p PropertySet) Property(id PropertyID) (Value, bool) {
	v, ok := p[id]
	return v, ok
}

// String returns the string property id, or "" when absent or not a string.
func (p PropertySet) String(id PropertyID) string {
	v, ok := p[id]
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// Time returns the first timestamp found among ids, in order.
func (p PropertySet) Time(ids ...PropertyID) (time.Time, bool) {
	for _, id := range ids {
		if v, ok := p[id]; ok {
			if t, ok := v.Time(); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Restrict returns a copy holding only the requested properties.
// A nil ids slice returns the set unchanged.
func (p PropertySet) Restrict(ids []PropertyID) PropertySet {
	if ids == nil {
		return p
	}
	out := make(PropertySet, len(ids))
	for _, id := range ids {
		if v, ok := p[id]; ok {
			out[id] = v
		}
	}
	return out
}

// Wants reports whether id is part of the requested subset.
// A nil subset requests every property.
func Wants(ids []PropertyID, id PropertyID) bool {
	if ids == nil {
		return true
	}
	for _, want := range ids {
		if want == id {
			return true
		}
	}
	return false
}

// fileTimeEpochDiff is the number of seconds between 1601-01-01 and
// 1970-01-01.
const fileTimeEpochDiff = 11644473600

// FromFileTime converts a Windows FILETIME (100ns ticks since 1601) to a
// UTC time.
func FromFileTime(ticks int64) time.Time {
	secs := ticks/10_000_000 - fileTimeEpochDiff
	nanos := (ticks % 10_000_000) * 100
	return time.Unix(secs, nanos).UTC()
}

// ToFileTime converts t to Windows FILETIME ticks.
func ToFileTime(t time.Time) int64 {
	return (t.Unix()+fileTimeEpochDiff)*10_000_000 + int64(t.Nanosecond()/100)
}
