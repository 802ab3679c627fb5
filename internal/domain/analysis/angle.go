package analysis

import "fmt"

// Angle is one of the five fixed scalp-photo viewpoints.
type Angle string

const (
	AngleTop         Angle = "top"
	AngleHairline    Angle = "hairline"
	AngleLeftTemple  Angle = "left_temple"
	AngleRightTemple Angle = "right_temple"
	AngleCrown       Angle = "crown"
)

// AngleInfo is the guidance shown while capturing an angle.
type AngleInfo struct {
	Angle       Angle  `json:"angle"`
	Label       string `json:"label"`
	ShortLabel  string `json:"short_label"`
	Instruction string `json:"instruction"`
}

var angleTable = []AngleInfo{
	{AngleTop, "Top of Head", "Top", "Hold the camera directly above your head, about 12 inches away. Part your hair naturally."},
	{AngleHairline, "Hairline", "Hairline", "Face the camera and pull your hair back. Capture your full frontal hairline clearly."},
	{AngleLeftTemple, "Left Temple", "Left Temple", "Turn your head to show the left temple area. Keep the camera at eye level."},
	{AngleRightTemple, "Right Temple", "Right Temple", "Turn your head to show the right temple area. Keep the camera at eye level."},
	{AngleCrown, "Crown", "Crown", "Tilt your head forward and photograph the crown area from above and slightly behind."},
}

// Angles returns the angles in capture order.
func Angles() []AngleInfo {
	out := make([]AngleInfo, len(angleTable))
	copy(out, angleTable)
	return out
}

// ParseAngle validates s against the fixed angle set.
func ParseAngle(s string) (Angle, error) {
	for _, a := range angleTable {
		if string(a.Angle) == s {
			return a.Angle, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAngle, s)
}

// Index is the zero-based capture position of a, or -1.
func (a Angle) Index() int {
	for i, info := range angleTable {
		if info.Angle == a {
			return i
		}
	}
	return -1
}

// Info returns the metadata of a.
func (a Angle) Info() AngleInfo {
	if i := a.Index(); i >= 0 {
		return angleTable[i]
	}
	return AngleInfo{Angle: a, Label: string(a), ShortLabel: string(a)}
}

// Label is the display name of a.
func (a Angle) Label() string {
	return a.Info().Label
}
