// Package units converts typographic lengths into twips (1/1440 inch), the
// base unit of WordprocessingML, and back into 96 dpi pixels.
package units

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	TwipsPerInch  = 1440
	TwipsPerPoint = 20
	TwipsPerPica  = 240
	TwipsPerPixel = 15 // 1440 / 96

	EMUPerTwip  = 635
	EMUPerPixel = 9525
)

func PointsToTwip(pt float64) int      { return round(pt * TwipsPerPoint) }
func InchesToTwip(in float64) int      { return round(in * TwipsPerInch) }
func CentimetersToTwip(cm float64) int { return round(cm * TwipsPerInch / 2.54) }
func MillimetersToTwip(mm float64) int { return round(mm * TwipsPerInch / 25.4) }
func PicasToTwip(pc float64) int       { return round(pc * TwipsPerPica) }
func PixelsToTwip(px float64) int      { return round(px * TwipsPerPixel) }

// TwipToPixel is the inverse of PixelsToTwip, rounded to whole pixels.
func TwipToPixel(tw int) int { return round(float64(tw) / TwipsPerPixel) }

func TwipToEMU(tw int) int64   { return int64(tw) * EMUPerTwip }
func PixelsToEMU(px int) int64 { return int64(px) * EMUPerPixel }

// HalfPoints converts a font size in points to the half-point value used by w:sz.
func HalfPoints(pt float64) int { return round(pt * 2) }

// Parse converts a length string into twips. Recognized suffixes are pt, in,
// cm, mm, pc (or pi), px and tw. A bare number is already in twips.
func Parse(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty length")
	}

	num, suffix := splitSuffix(s)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}

	switch suffix {
	case "", "tw", "twip", "twips":
		return round(v), nil
	case "pt":
		return PointsToTwip(v), nil
	case "in", `"`:
		return InchesToTwip(v), nil
	case "cm":
		return CentimetersToTwip(v), nil
	case "mm":
		return MillimetersToTwip(v), nil
	case "pc", "pi":
		return PicasToTwip(v), nil
	case "px":
		return PixelsToTwip(v), nil
	default:
		return 0, fmt.Errorf("unknown unit %q in %q", suffix, s)
	}
}

// ToTwip accepts a number (twips) or a unit-suffixed string.
func ToTwip(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return round(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid length %q", x)
		}
		return round(f), nil
	case string:
		return Parse(x)
	default:
		return 0, fmt.Errorf("unsupported length type %T", v)
	}
}

// ParsePoints reads a font size such as "12pt", "16px" or "11" (points)
// and returns it in points.
func ParsePoints(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	num, suffix := splitSuffix(s)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid font size %q", s)
	}
	switch suffix {
	case "", "pt":
		return v, nil
	case "px":
		return v * 72 / 96, nil
	case "em", "rem":
		return v * 12, nil
	default:
		return 0, fmt.Errorf("unknown font size unit %q", suffix)
	}
}

// Length is a twip measure that unmarshals from either a JSON number or a
// unit-suffixed string.
type Length int

func (l *Length) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	tw, err := ToTwip(v)
	if err != nil {
		return err
	}
	*l = Length(tw)
	return nil
}

func splitSuffix(s string) (string, string) {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
}

func round(f float64) int { return int(math.Round(f)) }
