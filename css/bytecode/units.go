package bytecode

import "strings"

// Unit is the unit tag stored after a fixed-point operand.
type Unit uint32

const (
	UnitPX Unit = iota
	UnitEX
	UnitEM
	UnitIN
	UnitCM
	UnitMM
	UnitQ
	UnitPT
	UnitPC
	UnitCH
	UnitREM
	UnitLH
	UnitVH
	UnitVW
	UnitVI
	UnitVB
	UnitVMIN
	UnitVMAX
	UnitPCT
	UnitDEG
	UnitGRAD
	UnitRAD
	UnitTURN
	UnitMS
	UnitS
	UnitHZ
	UnitKHZ
	UnitDPI
	UnitDPCM
	UnitDPPX
	UnitFR

	unitCount
)

var unitNames = [unitCount]string{
	UnitPX:   "px",
	UnitEX:   "ex",
	UnitEM:   "em",
	UnitIN:   "in",
	UnitCM:   "cm",
	UnitMM:   "mm",
	UnitQ:    "q",
	UnitPT:   "pt",
	UnitPC:   "pc",
	UnitCH:   "ch",
	UnitREM:  "rem",
	UnitLH:   "lh",
	UnitVH:   "vh",
	UnitVW:   "vw",
	UnitVI:   "vi",
	UnitVB:   "vb",
	UnitVMIN: "vmin",
	UnitVMAX: "vmax",
	UnitPCT:  "%",
	UnitDEG:  "deg",
	UnitGRAD: "grad",
	UnitRAD:  "rad",
	UnitTURN: "turn",
	UnitMS:   "ms",
	UnitS:    "s",
	UnitHZ:   "hz",
	UnitKHZ:  "khz",
	UnitDPI:  "dpi",
	UnitDPCM: "dpcm",
	UnitDPPX: "dppx",
	UnitFR:   "fr",
}

func (u Unit) String() string {
	if u < unitCount {
		return unitNames[u]
	}
	return "?"
}

// UnitByName looks a unit suffix up, ignoring ASCII case.
func UnitByName(name string) (Unit, bool) {
	for u, n := range unitNames {
		if strings.EqualFold(n, name) {
			return Unit(u), true
		}
	}
	return 0, false
}

// IsLength reports whether u measures distance. Percentages are not lengths.
func (u Unit) IsLength() bool {
	return u <= UnitVMAX
}

func (u Unit) IsAngle() bool {
	return u >= UnitDEG && u <= UnitTURN
}

func (u Unit) IsTime() bool {
	return u == UnitMS || u == UnitS
}

func (u Unit) IsFrequency() bool {
	return u == UnitHZ || u == UnitKHZ
}

func (u Unit) IsResolution() bool {
	return u >= UnitDPI && u <= UnitDPPX
}
