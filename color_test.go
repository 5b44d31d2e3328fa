package compositor

import (
	"image/color"
	"testing"
)

func TestHexShorthandRGB(t *testing.T) {
	got := Hex("#0f8")
	want := color.RGBA{R: 0, G: 0xff, B: 0x88, A: 255}
	if got != want {
		t.Errorf("Hex(#0f8) = %+v, want %+v", got, want)
	}
}

func TestHexShorthandRGBA(t *testing.T) {
	got := Hex("0f84")
	want := color.RGBA{R: 0, G: 0xff, B: 0x88, A: 0x44}
	if got != want {
		t.Errorf("Hex(0f84) = %+v, want %+v", got, want)
	}
}

func TestHexFullRGB(t *testing.T) {
	got := Hex("#336699")
	want := color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}
	if got != want {
		t.Errorf("Hex(#336699) = %+v, want %+v", got, want)
	}
}

func TestHexFullRGBA(t *testing.T) {
	got := Hex("336699cc")
	want := color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xcc}
	if got != want {
		t.Errorf("Hex(336699cc) = %+v, want %+v", got, want)
	}
}

func TestHexInvalidLengthFallsBackToOpaqueBlack(t *testing.T) {
	got := Hex("12345")
	want := color.RGBA{A: 255}
	if got != want {
		t.Errorf("Hex(12345) = %+v, want %+v (opaque black fallback)", got, want)
	}
}

func TestHexNonHexDigitsStopParsing(t *testing.T) {
	got := Hex("#zz6699")
	want := color.RGBA{R: 0, G: 0x66, B: 0x99, A: 255}
	if got != want {
		t.Errorf("Hex(#zz6699) = %+v, want %+v (non-hex digits parse as 0)", got, want)
	}
}
