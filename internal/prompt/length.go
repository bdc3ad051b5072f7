package prompt

// LengthBucket is the discrete guidance tier derived from a line-budget hint.
type LengthBucket int

const (
	LengthNatural LengthBucket = iota
	LengthTight
	LengthBalanced
	LengthFull
)

const (
	tightMaxLines = 17
	fullMinLines  = 30
)

func (b LengthBucket) String() string {
	switch b {
	case LengthTight:
		return "tight"
	case LengthBalanced:
		return "balanced"
	case LengthFull:
		return "full"
	default:
		return "natural"
	}
}

// Guidance is the instruction sentence rendered into the system prompt.
func (b LengthBucket) Guidance() string {
	switch b {
	case LengthTight:
		return "Keep the response tightly scoped: one clear thesis sentence followed by at most one short supporting paragraph."
	case LengthBalanced:
		return "Provide a balanced answer with two to three medium-length paragraphs."
	case LengthFull:
		return "Provide a fuller answer with multiple substantial paragraphs covering architecture, implementation details, trade-offs, and measurable impact."
	default:
		return "Match the natural depth expected in a real interview unless otherwise implied."
	}
}

// ResolveLength maps a maxLines hint to its bucket. Nil or non-positive values mean
// no budget was given.
func ResolveLength(maxLines *int) LengthBucket {
	if maxLines == nil || *maxLines <= 0 {
		return LengthNatural
	}
	switch n := *maxLines; {
	case n <= tightMaxLines:
		return LengthTight
	case n >= fullMinLines:
		return LengthFull
	default:
		return LengthBalanced
	}
}

func LengthGuidance(maxLines *int) string {
	return ResolveLength(maxLines).Guidance()
}
