package analysis

import "github.com/cwbudde/algo-ephys/detect"

// CurationState tracks operator-excluded candidates by positional index,
// the candidate's rank in the freshly detected array. Positions are only
// meaningful against one specific candidate array: the engine clears the
// set whenever a processing or detection parameter changes, so manual
// exclusions never survive a parameter change.
type CurationState struct {
	excluded map[int]struct{}
}

// NewCurationState returns an empty curation state.
func NewCurationState() *CurationState {
	return &CurationState{excluded: make(map[int]struct{})}
}

// Toggle flips the exclusion of the candidate at the given position.
func (c *CurationState) Toggle(position int) {
	if _, ok := c.excluded[position]; ok {
		delete(c.excluded, position)
		return
	}
	c.excluded[position] = struct{}{}
}

// Reset clears all exclusions.
func (c *CurationState) Reset() {
	c.excluded = make(map[int]struct{})
}

// Excluded reports whether the candidate at the given position is excluded.
func (c *CurationState) Excluded(position int) bool {
	_, ok := c.excluded[position]
	return ok
}

// Count returns the number of excluded positions.
func (c *CurationState) Count() int {
	return len(c.excluded)
}

// Apply returns the candidates that are not excluded, in original order.
func (c *CurationState) Apply(candidates []detect.Candidate) []detect.Candidate {
	if len(c.excluded) == 0 {
		return candidates
	}

	kept := make([]detect.Candidate, 0, len(candidates))
	for pos, cand := range candidates {
		if !c.Excluded(pos) {
			kept = append(kept, cand)
		}
	}

	return kept
}
