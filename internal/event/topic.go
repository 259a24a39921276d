package event

import "strings"

// Topic is a hierarchical event type in dot notation, e.g. "cell.committed".
type Topic string

// Wildcards usable in subscription patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	Separator = "."
)

// Topics published by the grid.
const (
	TopicColumnToggled  Topic = "column.toggled"
	TopicCellActivated  Topic = "cell.activated"
	TopicCellCommitted  Topic = "cell.committed"
	TopicCellRejected   Topic = "cell.rejected"
	TopicCellStale      Topic = "cell.stale"
	TopicCellCancelled  Topic = "cell.cancelled"
	TopicConfigReloaded Topic = "config.reloaded"
)

func (t Topic) String() string {
	return string(t)
}

// Segments splits the topic on the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid reports whether t is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	ti, pi := 0, 0
	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for ; ti <= len(topic); ti++ {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
			}
			return false
		}
		if ti >= len(topic) {
			return false
		}
		if pattern[pi] != WildcardSingle && pattern[pi] != topic[ti] {
			return false
		}
		ti++
		pi++
	}
	return ti == len(topic)
}
