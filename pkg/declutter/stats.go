package declutter

// Stats summarizes a declutter pass.
type Stats struct {
	Sites        int `json:"sites"`
	Anchors      int `json:"anchors"`
	ShiftedDown  int `json:"shifted_down"`
	ShiftedRight int `json:"shifted_right"`
	Unshifted    int `json:"unshifted"` // matched a group but were not moved

	// MaxGroupSize counts the anchor plus every point matched to it.
	MaxGroupSize int `json:"max_group_size"`

	// MaxDisplacementMeters is the largest great-circle move of a single point.
	MaxDisplacementMeters float64 `json:"max_displacement_m"`
}

// Shifted returns the number of moved points.
func (s Stats) Shifted() int { return s.ShiftedDown + s.ShiftedRight }
