package tx

import "testing"

// FuzzParseMessageScriptNoPanic ensures ParseMessageScript never panics.
func FuzzParseMessageScriptNoPanic(f *testing.F) {
	f.Add([]byte{0x6a, 0x04, 0x00, 0x74, 0x61, 0x62, 0x01, 0x41})
	f.Add([]byte{0x6a})
	f.Add([]byte{0x6a, 0x4c})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, s []byte) {
		_, _, _ = ParseMessageScript(s)
	})
}

// FuzzMessageRoundTrip verifies BuildMessageScript followed by ParseMessageScript.
func FuzzMessageRoundTrip(f *testing.F) {
	f.Add("hello")
	f.Add("ñandú 🦤")

	f.Fuzz(func(t *testing.T, msg string) {
		s, err := BuildMessageScript(msg)
		if err != nil {
			return
		}
		got, ok, err := ParseMessageScript(s)
		if err != nil || !ok {
			t.Fatalf("parse failed: ok=%v err=%v", ok, err)
		}
		if got != msg {
			t.Fatalf("round trip mismatch: %q != %q", got, msg)
		}
	})
}

// FuzzEstimateFeeNoPanic ensures fee estimation is total.
func FuzzEstimateFeeNoPanic(f *testing.F) {
	f.Add(0, uint64(0))
	f.Add(1000, uint64(1200))

	f.Fuzz(func(t *testing.T, size int, rate uint64) {
		if size < 0 {
			return
		}
		_ = EstimateFee(size, rate)
	})
}
