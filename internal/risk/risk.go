// Package risk maps classifier output to user-facing risk tiers.
//
// Two policies exist because the two scoring endpoints were specified
// differently: single-record scoring bands the probability, batch scoring
// trusts the hard label first and only then applies a lower cutoff.
package risk

// Tier is a user-facing risk category.
type Tier int

const (
	NotDiabetic Tier = iota
	Borderline
	Diabetic
)

// Single-record band edges, both inclusive on the Borderline side.
const (
	BorderlineLower = 0.40
	BorderlineUpper = 0.60
)

// BatchBorderlineCutoff is the probability above which a negative hard
// label is still reported as Borderline in batch scoring.
const BatchBorderlineCutoff = 0.35

// Label returns the wire label.
func (t Tier) Label() string {
	switch t {
	case Diabetic:
		return "Diabetic"
	case Borderline:
		return "Borderline Risk"
	default:
		return "Not Diabetic"
	}
}

// Advice returns the dietary advisory text for the tier.
func (t Tier) Advice() string {
	switch t {
	case Diabetic:
		return "Adopt a low-sugar, low-carb diet and consult a doctor for monitoring."
	case Borderline:
		return "You are at risk of developing diabetes. Reduce sugar and carb intake, increase physical activity, and monitor your health regularly."
	default:
		return "Continue with a balanced diet rich in vegetables and whole grains."
	}
}

func (t Tier) String() string {
	return t.Label()
}

// Classify applies the single-record policy:
// p < 0.40 is NotDiabetic, 0.40 <= p <= 0.60 is Borderline, p > 0.60 is Diabetic.
func Classify(p float64) Tier {
	switch {
	case p < BorderlineLower:
		return NotDiabetic
	case p <= BorderlineUpper:
		return Borderline
	default:
		return Diabetic
	}
}

// ClassifyBatch applies the batch policy: a positive hard label wins,
// otherwise p > 0.35 is Borderline.
func ClassifyBatch(positive bool, p float64) Tier {
	switch {
	case positive:
		return Diabetic
	case p > BatchBorderlineCutoff:
		return Borderline
	default:
		return NotDiabetic
	}
}

// ParseLabel maps a wire label back to its tier.
func ParseLabel(label string) (Tier, bool) {
	for _, t := range []Tier{NotDiabetic, Borderline, Diabetic} {
		if t.Label() == label {
			return t, true
		}
	}
	return NotDiabetic, false
}
