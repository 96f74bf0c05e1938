package dataset

import "strings"

// RetentionGroup buckets members by how many days they were active.
type RetentionGroup string

const (
	Retention0To5   RetentionGroup = "0-5 days"
	Retention6To15  RetentionGroup = "6-15 days"
	Retention16To30 RetentionGroup = "16-30 days"
	Retention30Plus RetentionGroup = "30+ days"
)

// RetentionGroups returns the buckets in ascending order of activity.
func RetentionGroups() []RetentionGroup {
	return []RetentionGroup{Retention0To5, Retention6To15, Retention16To30, Retention30Plus}
}

// Classify maps days active to its retention bucket.
// Upper bounds are inclusive; negative input lands in the first bucket.
func Classify(daysActive int) RetentionGroup {
	switch {
	case daysActive <= 5:
		return Retention0To5
	case daysActive <= 15:
		return Retention6To15
	case daysActive <= 30:
		return Retention16To30
	default:
		return Retention30Plus
	}
}

// ParseRetentionGroup matches a bucket label, ignoring surrounding space.
func ParseRetentionGroup(s string) (RetentionGroup, bool) {
	s = strings.TrimSpace(s)
	for _, g := range RetentionGroups() {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}
