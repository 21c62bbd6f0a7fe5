package storage

// Keyspace builds fully-qualified storage keys.
//
//	global:  <prefix><key>
//	scoped:  <prefix><profileID>_<key>
type Keyspace struct {
	prefix            string
	fallbackProfileID string
}

// NewKeyspace creates a keyspace. fallbackProfileID is used whenever a scoped
// key is requested without a profile.
func NewKeyspace(prefix, fallbackProfileID string) Keyspace {
	return Keyspace{prefix: prefix, fallbackProfileID: fallbackProfileID}
}

// Prefix is the namespace shared by every key this application writes
func (k Keyspace) Prefix() string {
	return k.prefix
}

// FallbackProfileID is the implicit profile used before any profile is selected
func (k Keyspace) FallbackProfileID() string {
	return k.fallbackProfileID
}

// Global returns the key for an unscoped collection
func (k Keyspace) Global(key string) string {
	return k.prefix + key
}

// Scoped returns the key for a profile-scoped collection
func (k Keyspace) Scoped(profileID, key string) string {
	return k.ProfilePrefix(profileID) + key
}

// ProfilePrefix returns the prefix shared by all of a profile's collections
func (k Keyspace) ProfilePrefix(profileID string) string {
	if profileID == "" {
		profileID = k.fallbackProfileID
	}
	return k.prefix + profileID + "_"
}
