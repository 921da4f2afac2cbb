package clock

import "testing"

func TestSystemNowMsIsPositiveAndMonotonicEnough(t *testing.T) {
	a := System{}.NowMs()
	b := System{}.NowMs()
	if a <= 0 || b <= 0 {
		t.Fatalf("NowMs returned non-positive value: %d, %d", a, b)
	}
	if b < a {
		t.Fatalf("NowMs went backwards: %d then %d", a, b)
	}
}

type fixedClock int64

func (f fixedClock) NowMs() int64 { return int64(f) }

func TestSourceInterfaceSatisfiedByFake(t *testing.T) {
	var s Source = fixedClock(42)
	if s.NowMs() != 42 {
		t.Fatalf("NowMs = %d, want 42", s.NowMs())
	}
}
