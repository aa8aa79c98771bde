package merklesync

import "fmt"

// WarningKind classifies an edit the reconciler skipped.
type WarningKind uint8

const (
	// WarnModifyMissing: a Modified edit names a key the target lacks.
	WarnModifyMissing WarningKind = iota + 1
	// WarnAddConflict: an Added edit names a key the target already has.
	WarnAddConflict
	// WarnDeleteMissing: a Deleted edit names a key the target lacks.
	WarnDeleteMissing
	// WarnInvalidEdit: the edit has no key, no content or an unknown kind.
	WarnInvalidEdit
)

func (k WarningKind) String() string {
	switch k {
	case WarnModifyMissing:
		return "modify-missing"
	case WarnAddConflict:
		return "add-conflict"
	case WarnDeleteMissing:
		return "delete-missing"
	case WarnInvalidEdit:
		return "invalid-edit"
	default:
		return "unknown"
	}
}

// Warning reports a skipped edit. Warnings never stop reconciliation.
type Warning struct {
	Kind    WarningKind
	Edit    Edit
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Apply runs script against a copy of target and returns the result
// together with a warning for every edit it had to skip. target itself is
// left untouched.
//
// The script is only meaningful against the snapshot it was diffed from.
// Apply does not try to detect staleness; see Store.Apply for that.
func Apply(target Collection, script EditScript) (Collection, []Warning) {
	out := target.Clone()
	pos := make(map[Key]int, len(out))
	for i, r := range out {
		pos[r.Key] = i
	}
	removed := make(map[int]struct{})

	var warnings []Warning
	warn := func(kind WarningKind, e Edit, format string, args ...any) {
		warnings = append(warnings, Warning{Kind: kind, Edit: e, Message: fmt.Sprintf(format, args...)})
	}

	for _, e := range script {
		if e.Key == "" {
			warn(WarnInvalidEdit, e, "%s edit without key", e.Kind)
			continue
		}
		switch e.Kind {
		case Modified:
			if e.NewContent == "" {
				warn(WarnInvalidEdit, e, "modify %s without content", e.Key)
				continue
			}
			i, ok := pos[e.Key]
			if !ok {
				warn(WarnModifyMissing, e, "modify %s: key not in target", e.Key)
				continue
			}
			out[i].Content = e.NewContent
		case Added:
			if e.NewContent == "" {
				warn(WarnInvalidEdit, e, "add %s without content", e.Key)
				continue
			}
			if _, ok := pos[e.Key]; ok {
				warn(WarnAddConflict, e, "add %s: key already in target", e.Key)
				continue
			}
			pos[e.Key] = len(out)
			out = append(out, Record{Key: e.Key, Content: e.NewContent})
		case Deleted:
			i, ok := pos[e.Key]
			if !ok {
				warn(WarnDeleteMissing, e, "delete %s: key not in target", e.Key)
				continue
			}
			removed[i] = struct{}{}
			delete(pos, e.Key)
		default:
			warn(WarnInvalidEdit, e, "unknown edit kind %s for %s", e.Kind, e.Key)
		}
	}

	if len(removed) == 0 {
		return out, warnings
	}
	kept := make(Collection, 0, len(out)-len(removed))
	for i, r := range out {
		if _, ok := removed[i]; !ok {
			kept = append(kept, r)
		}
	}
	return kept, warnings
}
