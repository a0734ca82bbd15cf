package twofactor

import "slices"

// Status is the lifecycle position of a user's two-factor setup.
type Status string

const (
	StatusUnset   Status = "unset"   // no secret
	StatusPending Status = "pending" // secret issued, waiting for the first valid code
	StatusActive  Status = "active"  // codes required at login
)

func (s Status) String() string { return string(s) }

// State is the persisted two-factor record of one user. The engine reads and
// writes it only through Storage; it never keeps its own copy.
type State struct {
	Secret           string   `json:"secret,omitempty" bson:"secret,omitempty"`
	Enabled          bool     `json:"enabled" bson:"enabled"`
	BackupCodeHashes []string `json:"backup_code_hashes" bson:"backup_code_hashes"`
}

// Status derives the lifecycle status from the record.
func (s State) Status() Status {
	switch {
	case s.Secret == "":
		return StatusUnset
	case !s.Enabled:
		return StatusPending
	default:
		return StatusActive
	}
}

// Validate checks the record invariants.
func (s State) Validate() error {
	if s.Enabled && s.Secret == "" {
		return ErrInvalidState
	}
	return nil
}

// Clone returns a deep copy. The hash list of the copy is never nil.
func (s State) Clone() State {
	s.BackupCodeHashes = CloneHashes(s.BackupCodeHashes)
	return s
}

// CloneHashes copies a hash list, mapping nil to an empty slice so every
// adapter persists an empty array rather than NULL.
func CloneHashes(hashes []string) []string {
	if hashes == nil {
		return []string{}
	}
	return slices.Clone(hashes)
}
