package resp

// Kind tags the variant a Value holds. Unlike the request side (Command),
// replies need the two "shaped but empty" variants NullBulkString and
// NullArray, plus the OK/SimpleString split a command layer cares about
// even though both encode to the same "+...\r\n" line shape for SimpleString.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
	KindNullBulkString
	KindNullArray
	KindOK
)

// Value is a reply value in its unencoded, inspectable form. Command
// handlers build a Value and hand it to Encode rather than writing RESP
// bytes directly, so tests can assert on structure instead of wire bytes.
type Value struct {
	kind Kind
	str  string
	bulk []byte
	i    int64
	arr  []Value
}

func SimpleStringValue(s string) Value { return Value{kind: KindSimpleString, str: s} }
func ErrorValue(msg string) Value       { return Value{kind: KindError, str: msg} }
func IntegerValue(n int64) Value        { return Value{kind: KindInteger, i: n} }
func BulkValue(b []byte) Value          { return Value{kind: KindBulkString, bulk: b} }
func BulkStringValue(s string) Value    { return Value{kind: KindBulkString, bulk: []byte(s)} }
func ArrayValue(items []Value) Value    { return Value{kind: KindArray, arr: items} }
func NullBulkStringValue() Value        { return Value{kind: KindNullBulkString} }
func NullArrayValue() Value             { return Value{kind: KindNullArray} }
func OKValue() Value                    { return Value{kind: KindOK} }

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// Encode appends this Value's RESP2 wire encoding to b.
func (v Value) Encode(b []byte) []byte {
	switch v.kind {
	case KindSimpleString:
		return AppendString(b, v.str)
	case KindError:
		return AppendError(b, v.str)
	case KindInteger:
		return AppendInt(b, v.i)
	case KindBulkString:
		return AppendBulk(b, v.bulk)
	case KindArray:
		b = AppendArray(b, len(v.arr))
		for _, item := range v.arr {
			b = item.Encode(b)
		}
		return b
	case KindNullBulkString:
		return AppendNullBulkString(b)
	case KindNullArray:
		return AppendNullArray(b)
	case KindOK:
		return AppendOK(b)
	default:
		return AppendError(b, "ERR internal error: unknown reply kind")
	}
}
