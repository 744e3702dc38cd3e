package propkey

// Shape classifies the chain of entries leading to a matched value.
type Shape int

const (
	// Linear means every mapping on the chain, root included, holds exactly
	// one entry.
	Linear Shape = iota
	// Branching means some mapping on the chain has sibling entries.
	Branching
)

func (s Shape) String() string {
	switch s {
	case Linear:
		return "linear"
	case Branching:
		return "branching"
	default:
		return "unknown"
	}
}

// Classify inspects the mappings on c's chain as they are now.
func Classify(c Candidate) Shape {
	for _, l := range c.Chain {
		if entryCount(l.Container) != 1 {
			return Branching
		}
	}
	return Linear
}
