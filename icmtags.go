package icclu

import (
	"fmt"
	"strings"
)

// ProfileClass is the ICC device class signature.
type ProfileClass uint32

const (
	ClassInput      ProfileClass = 's'<<24 | 'c'<<16 | 'n'<<8 | 'r'
	ClassDisplay    ProfileClass = 'm'<<24 | 'n'<<16 | 't'<<8 | 'r'
	ClassOutput     ProfileClass = 'p'<<24 | 'r'<<16 | 't'<<8 | 'r'
	ClassLink       ProfileClass = 'l'<<24 | 'i'<<16 | 'n'<<8 | 'k'
	ClassAbstract   ProfileClass = 'a'<<24 | 'b'<<16 | 's'<<8 | 't'
	ClassColorSpace ProfileClass = 's'<<24 | 'p'<<16 | 'a'<<8 | 'c'
	ClassNamedColor ProfileClass = 'n'<<24 | 'm'<<16 | 'c'<<8 | 'l'
)

func (c ProfileClass) String() string { return sigString(uint32(c)) }

// ParseProfileClass accepts a class signature such as "mntr".
func ParseProfileClass(s string) (ProfileClass, error) {
	if len(s) != 4 {
		return 0, newError(CodeFormat, "bad profile class %q", s)
	}
	c := ProfileClass(makeSig(s))
	switch c {
	case ClassInput, ClassDisplay, ClassOutput, ClassLink, ClassAbstract,
		ClassColorSpace, ClassNamedColor:
		return c, nil
	}
	return 0, newError(CodeFormat, "unknown profile class %q", s)
}

func sigString(v uint32) string {
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	for _, x := range b {
		if x < 0x20 || x > 0x7e {
			return fmt.Sprintf("0x%08x", v)
		}
	}
	return strings.TrimRight(string(b), " ")
}

// Intent is a rendering intent. The zero value asks for the profile's
// default. The two absolute variants are internal: they select the
// perceptual or saturation table but give absolute colorimetric PCS values.
type Intent int

const (
	IntentDefault Intent = iota
	IntentPerceptual
	IntentRelative
	IntentSaturation
	IntentAbsolute

	IntentAbsPerceptual Intent = 0x1000
	IntentAbsSaturation Intent = 0x1001
)

var intentNames = map[Intent]string{
	IntentDefault:       "default",
	IntentPerceptual:    "perceptual",
	IntentRelative:      "relative",
	IntentSaturation:    "saturation",
	IntentAbsolute:      "absolute",
	IntentAbsPerceptual: "absperceptual",
	IntentAbsSaturation: "abssaturation",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// ParseIntent accepts an intent name or its short form (p, r, s, a).
func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(s) {
	case "", "d", "default":
		return IntentDefault, nil
	case "p", "perceptual":
		return IntentPerceptual, nil
	case "r", "relative":
		return IntentRelative, nil
	case "s", "saturation":
		return IntentSaturation, nil
	case "a", "absolute":
		return IntentAbsolute, nil
	case "ap", "absperceptual":
		return IntentAbsPerceptual, nil
	case "as", "abssaturation":
		return IntentAbsSaturation, nil
	}
	return IntentDefault, newError(CodeIntent, "unknown intent %q", s)
}

// Func is the requested lookup direction.
type Func int

const (
	FuncFwd     Func = iota // device to PCS
	FuncBwd                 // PCS to device
	FuncGamut               // PCS to gamut distance
	FuncPreview             // PCS to PCS
)

var funcNames = [...]string{"fwd", "bwd", "gamut", "preview"}

func (f Func) String() string {
	if f >= 0 && int(f) < len(funcNames) {
		return funcNames[f]
	}
	return fmt.Sprintf("func(%d)", int(f))
}

// ParseFunc accepts fwd, bwd, gamut or preview.
func ParseFunc(s string) (Func, error) {
	for i, n := range funcNames {
		if strings.EqualFold(s, n) {
			return Func(i), nil
		}
	}
	return FuncFwd, newError(CodeFunc, "unknown lookup function %q", s)
}

// Order is the candidate tag search order.
type Order int

const (
	OrderNormal  Order = iota // dedicated tags first, synthetic shapers last
	OrderReverse              // synthetic shapers first
)

func (o Order) String() string {
	if o == OrderReverse {
		return "reverse"
	}
	return "normal"
}

// TagSig is an ICC tag signature.
type TagSig uint32

const (
	TagA2B0     TagSig = 'A'<<24 | '2'<<16 | 'B'<<8 | '0'
	TagA2B1     TagSig = 'A'<<24 | '2'<<16 | 'B'<<8 | '1'
	TagA2B2     TagSig = 'A'<<24 | '2'<<16 | 'B'<<8 | '2'
	TagB2A0     TagSig = 'B'<<24 | '2'<<16 | 'A'<<8 | '0'
	TagB2A1     TagSig = 'B'<<24 | '2'<<16 | 'A'<<8 | '1'
	TagB2A2     TagSig = 'B'<<24 | '2'<<16 | 'A'<<8 | '2'
	TagGamut    TagSig = 'g'<<24 | 'a'<<16 | 'm'<<8 | 't'
	TagPre0     TagSig = 'p'<<24 | 'r'<<16 | 'e'<<8 | '0'
	TagPre1     TagSig = 'p'<<24 | 'r'<<16 | 'e'<<8 | '1'
	TagPre2     TagSig = 'p'<<24 | 'r'<<16 | 'e'<<8 | '2'
	TagRedTRC   TagSig = 'r'<<24 | 'T'<<16 | 'R'<<8 | 'C'
	TagGreenTRC TagSig = 'g'<<24 | 'T'<<16 | 'R'<<8 | 'C'
	TagBlueTRC  TagSig = 'b'<<24 | 'T'<<16 | 'R'<<8 | 'C'
	TagGrayTRC  TagSig = 'k'<<24 | 'T'<<16 | 'R'<<8 | 'C'
	TagRedXYZ   TagSig = 'r'<<24 | 'X'<<16 | 'Y'<<8 | 'Z'
	TagGreenXYZ TagSig = 'g'<<24 | 'X'<<16 | 'Y'<<8 | 'Z'
	TagBlueXYZ  TagSig = 'b'<<24 | 'X'<<16 | 'Y'<<8 | 'Z'
	TagWhite    TagSig = 'w'<<24 | 't'<<16 | 'p'<<8 | 't'
	TagBlack    TagSig = 'b'<<24 | 'k'<<16 | 'p'<<8 | 't'

	// Synthetic transforms assembled from several tags.
	TagShaperMatrix TagSig = 'f'<<24 | 's'<<16 | 'm'<<8 | 'x'
	TagShaperMono   TagSig = 'f'<<24 | 's'<<16 | 'm'<<8 | 'o'
)

func (t TagSig) String() string { return sigString(uint32(t)) }

// ParseTagSig accepts a four character tag signature.
func ParseTagSig(s string) (TagSig, error) {
	if len(s) == 0 || len(s) > 4 {
		return 0, newError(CodeTag, "bad tag signature %q", s)
	}
	return TagSig(makeSig((s + "    ")[:4])), nil
}

// Header holds the profile header fields the builder consults.
type Header struct {
	Class      ProfileClass
	ColorSpace ColorSpace
	PCS        ColorSpace
	Intent     Intent
	Illuminant CIEXYZ
	CMMID      string // only used to spot the KCMS matrix scale quirk
}

// TagSource materializes profile tags.
//
// ReadTag returns a transform or curve node holding a reference for the
// caller, which must release it. The builder may adjust the returned node
// (the clut interpolation choice), so sources should not hand out a node
// that is in use elsewhere. A tag that is absent gives an error matching
// ErrTag.
type TagSource interface {
	Header() Header
	ReadTag(sig TagSig) (Node, error)
	ReadXYZ(sig TagSig) (CIEXYZ, error)
}
