package encoding

import "testing"

func TestPackIndex(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"zero", 0, 0},
		{"small", 7, 7},
		{"crosses 16 bits", 70000, 70000},
		{"max", MaxIndex, MaxIndex},
		{"negative", -1, -1},
		{"too large", MaxIndex + 1, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hi, lo := PackIndex(tc.in)
			if got := UnpackIndex(hi, lo); got != tc.want {
				t.Errorf("UnpackIndex(PackIndex(%d)) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestUnpackZeroPixel(t *testing.T) {
	if got := UnpackIndex(0, 0); got != -1 {
		t.Errorf("UnpackIndex(0, 0) = %d, want -1", got)
	}
}

func TestSplitMerge(t *testing.T) {
	hi, lo := Split16(0xAB12)
	if hi != 0xAB || lo != 0x12 {
		t.Errorf("Split16(0xAB12) = %x, %x", hi, lo)
	}
	if got := Merge8(hi, lo); got != 0xAB12 {
		t.Errorf("Merge8 = %x, want ab12", got)
	}

	a, b := Split32(0xDEADBEEF)
	if a != 0xDEAD || b != 0xBEEF {
		t.Errorf("Split32(0xDEADBEEF) = %x, %x", a, b)
	}
	if got := Merge16(a, b); got != 0xDEADBEEF {
		t.Errorf("Merge16 = %x, want deadbeef", got)
	}
}

func TestBytes8(t *testing.T) {
	for _, v := range []uint8{0, 1, 0x5a, 0xff} {
		if got := FromBytes8(ToBytes8(v)); got != v {
			t.Errorf("FromBytes8(ToBytes8(%x)) = %x", v, got)
		}
	}
	if got := FromBytes8(nil); got != 0 {
		t.Errorf("FromBytes8(nil) = %x, want 0", got)
	}
}
