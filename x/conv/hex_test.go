package conv

import "testing"

func TestBytesHex(t *testing.T) {
	for _, c := range []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{0x00}, "00"},
		{[]byte{0x02, 0x00, 0x00, 0x80, 0x00, 0x00}, "020000800000"},
		{[]byte{0xDE, 0xad, 0xBE, 0xef}, "DEADBEEF"},
	} {
		buf := make([]byte, 12)
		if got := string(BytesHex(buf, c.in)); got != c.want {
			t.Fatalf("BytesHex(%x) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBytesHexShortBuffer(t *testing.T) {
	if got := BytesHex(make([]byte, 3), []byte{1, 2}); len(got) != 0 {
		t.Fatalf("expected empty result, got %q", got)
	}
}
