package schema

import "strings"

// NamePolicy turns a nested field path into a flat column name. Policies
// must be deterministic: the same path always yields the same name.
type NamePolicy func(path []string) string

// UnderscoreNames is the default policy: path components joined with "_",
// so "profile.contact.email" becomes "profile_contact_email".
func UnderscoreNames(path []string) string {
	return strings.Join(path, "_")
}
