package domain

import (
	"sort"
	"strings"
	"time"
)

// fieldComparator localizes the "did this field change" decision for one
// updatable event field: whether the patch supplied it, whether the supplied
// value differs from the current one, and how both sides render for display.
type fieldComparator struct {
	field    string
	supplied func(patch EventPatch) bool
	changed  func(current Event, patch EventPatch) bool
	oldValue func(current Event) *string
	newValue func(patch EventPatch) *string
}

// eventComparators run in a fixed order so change records come out
// deterministic regardless of the shape of the client payload. Adding an
// updatable field is a one-entry change.
var eventComparators = []fieldComparator{
	{
		field:    "profiles",
		supplied: func(p EventPatch) bool { return p.Profiles != nil },
		changed: func(current Event, p EventPatch) bool {
			return !equalStringSets(current.Profiles, p.Profiles)
		},
		oldValue: func(current Event) *string { return joinStrings(current.Profiles) },
		newValue: func(p EventPatch) *string { return joinStrings(p.Profiles) },
	},
	{
		field:    "timezone",
		supplied: func(p EventPatch) bool { return p.Timezone != nil },
		changed: func(current Event, p EventPatch) bool {
			return !equalNullableStrings(nullableString(current.Timezone), normalizeNullable(p.Timezone))
		},
		oldValue: func(current Event) *string { return nullableString(current.Timezone) },
		newValue: func(p EventPatch) *string { return normalizeNullable(p.Timezone) },
	},
	{
		field:    "start",
		supplied: func(p EventPatch) bool { return p.Start != nil },
		changed: func(current Event, p EventPatch) bool {
			return instantChanged(&current.Start, p.Start)
		},
		oldValue: func(current Event) *string { return formatStored(current.Start) },
		newValue: func(p EventPatch) *string { return FormatInstant(p.Start) },
	},
	{
		field:    "end",
		supplied: func(p EventPatch) bool { return p.End != nil },
		changed: func(current Event, p EventPatch) bool {
			return instantChanged(&current.End, p.End)
		},
		oldValue: func(current Event) *string { return formatStored(current.End) },
		newValue: func(p EventPatch) *string { return FormatInstant(p.End) },
	},
}

// DiffEvent computes the ordered list of change records between the current
// event and a sparse patch. Fields the patch did not supply are never
// considered. Pure function over its two inputs.
func DiffEvent(current Event, patch EventPatch) []ChangeRecord {
	changes := []ChangeRecord{}
	for _, cmp := range eventComparators {
		if !cmp.supplied(patch) {
			continue
		}
		if !cmp.changed(current, patch) {
			continue
		}
		changes = append(changes, ChangeRecord{
			Field:    cmp.field,
			OldValue: cmp.oldValue(current),
			NewValue: cmp.newValue(patch),
		})
	}
	return changes
}

// equalStringSets compares two collections as order-independent sets, so
// membership order from the client never triggers a false positive.
func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// instantChanged compares an instant field at second resolution. A record is
// due when the values differ, when a value appears, or when a supplied value
// fails to normalize against a present old one. Both absent means unchanged.
func instantChanged(current *time.Time, raw *string) bool {
	var oldNorm *time.Time
	if current != nil && !current.IsZero() {
		normalized := NormalizeTime(*current)
		oldNorm = &normalized
	}
	newNorm := NormalizeInstant(raw)

	switch {
	case oldNorm == nil && newNorm == nil:
		return false
	case oldNorm == nil || newNorm == nil:
		return true
	default:
		return !oldNorm.Equal(*newNorm)
	}
}

// joinStrings renders a string collection as a comma-joined display value,
// sorted for stability, or nil when empty.
func joinStrings(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	joined := strings.Join(sorted, ", ")
	return &joined
}

func formatStored(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	formatted := FormatTime(t)
	return &formatted
}

// normalizeNullable folds empty strings into nil so "" and absent compare
// equal.
func normalizeNullable(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func equalNullableStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
