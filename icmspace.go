package icclu

import (
	"fmt"
	"strings"
)

// ColorSpace is an ICC colour space signature, or one of the internal
// pseudo signatures used to name a fixed point PCS encoding.
type ColorSpace uint32

func makeSig(s string) ColorSpace {
	return ColorSpace(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3]))
}

const (
	SpaceNone  ColorSpace = 0
	SpaceXYZ   ColorSpace = 'X'<<24 | 'Y'<<16 | 'Z'<<8 | ' '
	SpaceLab   ColorSpace = 'L'<<24 | 'a'<<16 | 'b'<<8 | ' '
	SpaceLuv   ColorSpace = 'L'<<24 | 'u'<<16 | 'v'<<8 | ' '
	SpaceYCbCr ColorSpace = 'Y'<<24 | 'C'<<16 | 'b'<<8 | 'r'
	SpaceYxy   ColorSpace = 'Y'<<24 | 'x'<<16 | 'y'<<8 | ' '
	SpaceRGB   ColorSpace = 'R'<<24 | 'G'<<16 | 'B'<<8 | ' '
	SpaceGray  ColorSpace = 'G'<<24 | 'R'<<16 | 'A'<<8 | 'Y'
	SpaceHSV   ColorSpace = 'H'<<24 | 'S'<<16 | 'V'<<8 | ' '
	SpaceHLS   ColorSpace = 'H'<<24 | 'L'<<16 | 'S'<<8 | ' '
	SpaceCMYK  ColorSpace = 'C'<<24 | 'M'<<16 | 'Y'<<8 | 'K'
	SpaceCMY   ColorSpace = 'C'<<24 | 'M'<<16 | 'Y'<<8 | ' '
	SpaceMch5  ColorSpace = 'M'<<24 | 'C'<<16 | 'H'<<8 | '5'
	SpaceMch6  ColorSpace = 'M'<<24 | 'C'<<16 | 'H'<<8 | '6'
	SpaceMch7  ColorSpace = 'M'<<24 | 'C'<<16 | 'H'<<8 | '7'
	SpaceMch8  ColorSpace = 'M'<<24 | 'C'<<16 | 'H'<<8 | '8'

	// Internal encodings, never found in a profile
	SpaceXYZ8    ColorSpace = 'X'<<24 | 'Y'<<16 | 'Z'<<8 | '8'
	SpaceXYZ16   ColorSpace = 'X'<<24 | 'Y'<<16 | 'Z'<<8 | '2'
	SpaceLab8    ColorSpace = 'L'<<24 | 'a'<<16 | 'b'<<8 | '8'
	SpaceLabV2   ColorSpace = 'L'<<24 | 'a'<<16 | 'b'<<8 | '2'
	SpaceLuv16   ColorSpace = 'L'<<24 | 'u'<<16 | 'v'<<8 | '2'
	SpaceYCbCr16 ColorSpace = 'Y'<<24 | 'C'<<16 | 'C'<<8 | '2'
	SpaceYxy16   ColorSpace = 'Y'<<24 | 'x'<<16 | 'y'<<8 | '2'
)

// SpaceNColor returns the signature of an n colour device space, 2..15.
func SpaceNColor(n int) ColorSpace {
	const hex = "0123456789ABCDEF"
	if n < 2 || n > 15 {
		return SpaceNone
	}
	return makeSig(string(hex[n]) + "CLR")
}

func (c ColorSpace) String() string {
	if c == SpaceNone {
		return "none"
	}
	b := []byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)}
	for _, x := range b {
		if x < 0x20 || x > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(c))
		}
	}
	return strings.TrimRight(string(b), " ")
}

// ParseColorSpace accepts a signature such as "RGB" or "Lab".
func ParseColorSpace(s string) (ColorSpace, error) {
	if len(s) == 0 || len(s) > 4 {
		return SpaceNone, newError(CodeFormat, "bad colour space %q", s)
	}
	sig := makeSig((s + "    ")[:4])
	if sig.Channels() == 0 {
		return SpaceNone, newError(CodeFormat, "unknown colour space %q", s)
	}
	return sig, nil
}

// Colour space type mask.
const (
	TypePCS  = 0x01 // XYZ or Lab, full range
	TypeNPCS = 0x02 // normalized encoding of XYZ or Lab
	TypeDev  = 0x04 // device (N component) space
	TypeNorm = 0x08 // normalized encoding of any space
	TypeGXYZ = 0x10 // XYZ in any encoding
	TypeGLab = 0x20 // Lab in any encoding
	TypeGPCS = TypeGXYZ | TypeGLab
)

// Type returns the type mask of c.
func (c ColorSpace) Type() int {
	switch c {
	case SpaceXYZ:
		return TypePCS | TypeGXYZ
	case SpaceLab:
		return TypePCS | TypeGLab
	case SpaceXYZ8, SpaceXYZ16:
		return TypeNPCS | TypeNorm | TypeGXYZ
	case SpaceLab8, SpaceLabV2:
		return TypeNPCS | TypeNorm | TypeGLab
	case SpaceLuv16, SpaceYCbCr16, SpaceYxy16:
		return TypeDev | TypeNorm
	}
	if c.Channels() > 0 {
		return TypeDev
	}
	return 0
}

func (c ColorSpace) IsPCS() bool  { return c.Type()&TypeGPCS != 0 }
func (c ColorSpace) IsNorm() bool { return c.Type()&TypeNorm != 0 }

// Channels returns the channel count of c, 0 if unknown.
func (c ColorSpace) Channels() int {
	switch c {
	case SpaceXYZ, SpaceLab, SpaceLuv, SpaceYCbCr, SpaceYxy, SpaceRGB, SpaceHSV,
		SpaceHLS, SpaceCMY, SpaceXYZ8, SpaceXYZ16, SpaceLab8, SpaceLabV2,
		SpaceLuv16, SpaceYCbCr16, SpaceYxy16:
		return 3
	case SpaceGray:
		return 1
	case SpaceCMYK:
		return 4
	case SpaceMch5:
		return 5
	case SpaceMch6:
		return 6
	case SpaceMch7:
		return 7
	case SpaceMch8:
		return 8
	}
	for n := 2; n <= 15; n++ {
		if c == SpaceNColor(n) {
			return n
		}
	}
	return 0
}

// Norm2Sig returns the full range space a normalized encoding stands for.
func Norm2Sig(c ColorSpace) ColorSpace {
	switch c {
	case SpaceXYZ8, SpaceXYZ16:
		return SpaceXYZ
	case SpaceLab8, SpaceLabV2:
		return SpaceLab
	case SpaceLuv16:
		return SpaceLuv
	case SpaceYCbCr16:
		return SpaceYCbCr
	case SpaceYxy16:
		return SpaceYxy
	}
	return c
}

// Sig2NormSig returns the fixed point encoding of a full range space, for
// 8 or 16 bit tables. Spaces already 0..1 are returned unchanged.
func Sig2NormSig(c ColorSpace, bits8 bool) ColorSpace {
	switch c {
	case SpaceXYZ:
		if bits8 {
			return SpaceXYZ8
		}
		return SpaceXYZ16
	case SpaceLab:
		if bits8 {
			return SpaceLab8
		}
		return SpaceLabV2
	case SpaceLuv:
		return SpaceLuv16
	case SpaceYCbCr:
		return SpaceYCbCr16
	case SpaceYxy:
		return SpaceYxy16
	}
	return c
}

// DefaultFullRange returns the nominal range of a full range space.
func DefaultFullRange(c ColorSpace) (lo, hi []float64) {
	switch c {
	case SpaceXYZ:
		top := 1.0 + 32767.0/32768.0
		return []float64{0, 0, 0}, []float64{top, top, top}
	case SpaceLab, SpaceLuv:
		return []float64{0, -128, -128}, []float64{100, 128, 128}
	case SpaceYCbCr:
		return []float64{0, -0.5, -0.5}, []float64{1, 0.5, 0.5}
	}
	n := c.Channels()
	lo = make([]float64, n)
	hi = make([]float64, n)
	for i := range hi {
		hi[i] = 1.0
	}
	return lo, hi
}

// DefaultRange returns the full range equivalent of the nominal range of
// a normalized or full range space.
func DefaultRange(c ColorSpace) (lo, hi []float64) {
	if !c.IsNorm() {
		return DefaultFullRange(c)
	}
	conv, _, err := newNSig2Norm(c, true)
	if err != nil || conv == nil {
		return DefaultFullRange(c)
	}
	defer conv.Release()
	n := c.Channels()
	lo = make([]float64, n)
	hi = make([]float64, n)
	for i := range hi {
		hi[i] = 1.0
	}
	conv.LookupFwd(lo, lo)
	conv.LookupFwd(hi, hi)
	return lo, hi
}

// CSInfo describes a colour space and its nominal range.
type CSInfo struct {
	Sig ColorSpace
	Nch int
	Min []float64
	Max []float64
}

func newCSInfo(sig ColorSpace) CSInfo {
	return CSInfo{Sig: sig, Nch: sig.Channels()}
}
