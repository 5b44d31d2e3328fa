package compositor

import "image/color"

// Hex parses a CSS-style hex color into an image/color.RGBA, the color
// type display items carry directly. Supports "RGB", "RGBA", "RRGGBB",
// "RRGGBBAA", with or without a leading '#'.
func Hex(hex string) color.RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3:
		parseHexDigits(hex[0:1], &r)
		parseHexDigits(hex[1:2], &g)
		parseHexDigits(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		parseHexDigits(hex[0:1], &r)
		parseHexDigits(hex[1:2], &g)
		parseHexDigits(hex[2:3], &b)
		parseHexDigits(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		parseHexDigits(hex[0:2], &r)
		parseHexDigits(hex[2:4], &g)
		parseHexDigits(hex[4:6], &b)
	case 8:
		parseHexDigits(hex[0:2], &r)
		parseHexDigits(hex[2:4], &g)
		parseHexDigits(hex[4:6], &b)
		parseHexDigits(hex[6:8], &a)
	default:
		return color.RGBA{A: 255}
	}

	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}

func parseHexDigits(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}
