package dataset

// MeterGroup is an ordered set of meters with no duplicate keys.
//
// The zero value is the empty group, which is the identity for Union.
// Groups are values: Union and the selectors return new groups and never
// modify their inputs.
type MeterGroup struct {
	meters []Meter
}

// NewMeterGroup builds a group from meters, keeping the first occurrence of
// each key.
func NewMeterGroup(meters ...Meter) MeterGroup {
	var g MeterGroup
	return g.add(meters)
}

// Len returns the number of meters.
func (g MeterGroup) Len() int { return len(g.meters) }

// Empty reports whether the group has no meters.
func (g MeterGroup) Empty() bool { return len(g.meters) == 0 }

// Meters returns a copy of the meters in group order.
func (g MeterGroup) Meters() []Meter {
	return append([]Meter(nil), g.meters...)
}

// Keys returns the meter keys in group order.
func (g MeterGroup) Keys() []MeterKey {
	keys := make([]MeterKey, len(g.meters))
	for i, m := range g.meters {
		keys[i] = m.Key
	}
	return keys
}

// Labels returns each meter's label in group order.
func (g MeterGroup) Labels() []string {
	labels := make([]string, len(g.meters))
	for i, m := range g.meters {
		labels[i] = m.Label()
	}
	return labels
}

// Contains reports whether a meter with key is in the group.
func (g MeterGroup) Contains(key MeterKey) bool {
	_, ok := g.Meter(key)
	return ok
}

// Meter returns the meter with key.
func (g MeterGroup) Meter(key MeterKey) (Meter, bool) {
	for _, m := range g.meters {
		if m.Key == key {
			return m, true
		}
	}
	return Meter{}, false
}

// Union returns g followed by the meters of other that g lacks.
//
// Membership is commutative and idempotent; order follows the receiver.
func (g MeterGroup) Union(other MeterGroup) MeterGroup {
	if other.Empty() {
		return g
	}
	out := MeterGroup{meters: make([]Meter, len(g.meters), len(g.meters)+len(other.meters))}
	copy(out.meters, g.meters)
	return out.add(other.meters)
}

// add appends unseen meters in place. Only called on groups the caller owns.
func (g MeterGroup) add(meters []Meter) MeterGroup {
	seen := make(map[MeterKey]struct{}, len(g.meters)+len(meters))
	for _, m := range g.meters {
		seen[m.Key] = struct{}{}
	}
	for _, m := range meters {
		if _, dup := seen[m.Key]; dup {
			continue
		}
		seen[m.Key] = struct{}{}
		g.meters = append(g.meters, m)
	}
	return g
}
