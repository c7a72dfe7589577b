package engine

// protection headroom per IEC 60364-4-43: In·k must stay within 1.45·Iz.
const overloadHeadroom = 1.45

// ComplianceInput gathers everything the pass/fail rules consume. Nil
// pointers are unavailable quantities; BaseAvailable reports whether the
// ampacity table had data for the combination at all.
type ComplianceInput struct {
	BaseAvailable  bool
	IzPerCableA    *float64
	IzTotalA       *float64
	IcalcPerCableA *float64
	IcalcTotalA    *float64
	DropPct        *float64
	DropLimitPct   *float64
	BreakerA       *float64
	I2A            *float64
}

// Compliance is the verdict triple plus the aggregate judgement.
type Compliance struct {
	Ampacity   Verdict
	Drop       Verdict
	Protection Verdict
	Overall    Verdict
}

// EvaluateCompliance applies the three sizing rules and the aggregate
// verdict. An unavailable sub-verdict never forces an aggregate failure;
// only an explicit fail does.
func EvaluateCompliance(in ComplianceInput) Compliance {
	var c Compliance

	switch {
	case !in.BaseAvailable:
		c.Ampacity = VerdictNotApplicable
	case in.IzPerCableA == nil || in.IcalcPerCableA == nil:
		c.Ampacity = VerdictUnknown
	case *in.IcalcPerCableA <= *in.IzPerCableA:
		c.Ampacity = VerdictPass
	default:
		c.Ampacity = VerdictFail
	}

	switch {
	case in.DropPct == nil || in.DropLimitPct == nil:
		c.Drop = VerdictUnknown
	case *in.DropPct <= *in.DropLimitPct:
		c.Drop = VerdictPass
	default:
		c.Drop = VerdictFail
	}

	switch {
	case in.BreakerA == nil || in.I2A == nil:
		c.Protection = VerdictUnknown
	case in.IzTotalA == nil || in.IcalcTotalA == nil:
		c.Protection = VerdictNotApplicable
	default:
		withinNominal := *in.IcalcTotalA <= *in.BreakerA && *in.BreakerA <= *in.IzTotalA
		overloadOK := *in.I2A <= overloadHeadroom*(*in.IzTotalA)
		if withinNominal && overloadOK {
			c.Protection = VerdictPass
		} else {
			c.Protection = VerdictFail
		}
	}

	switch {
	case !in.BaseAvailable:
		c.Overall = VerdictNotApplicable
	case c.Ampacity == VerdictPass && c.Drop == VerdictPass && c.Protection == VerdictPass:
		c.Overall = VerdictPass
	case c.Ampacity == VerdictFail || c.Drop == VerdictFail || c.Protection == VerdictFail:
		c.Overall = VerdictFail
	default:
		c.Overall = VerdictNotApplicable
	}

	return c
}
