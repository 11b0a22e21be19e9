package http1

// LengthChecker accounts body bytes against the declared Content-Length.
type LengthChecker struct {
	expected, consumed uint64
}

func NewLengthChecker(expected uint64) LengthChecker {
	return LengthChecker{expected: expected}
}

// Append accounts n more bytes. If the total would exceed the expected length, kind is
// returned and nothing is accounted.
func (l *LengthChecker) Append(n int, kind error) error {
	if uint64(n) > l.expected-l.consumed {
		return kind
	}

	l.consumed += uint64(n)
	return nil
}

// Complete reports whether exactly the expected number of bytes was accounted.
func (l LengthChecker) Complete() bool {
	return l.consumed == l.expected
}

// AssertExpected returns kind if fewer bytes than expected were accounted.
func (l LengthChecker) AssertExpected(kind error) error {
	if l.consumed < l.expected {
		return kind
	}

	return nil
}

// Left returns how many bytes are still expected.
func (l LengthChecker) Left() uint64 {
	return l.expected - l.consumed
}
