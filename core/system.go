package core

const (
	// SysPropertyPaused property key for the global pause flag
	SysPropertyPaused = "lending_paused"
	// SysPropertyDeprecated property key for the protocol-deprecated flag
	SysPropertyDeprecated = "lending_deprecated"
)

// System stores system information.
type System struct {
	Admins  []string
	Version string
}

// IsAdmin is admin
func (s *System) IsAdmin(userID string) bool {
	if len(s.Admins) == 0 {
		return false
	}

	for _, a := range s.Admins {
		if a == userID {
			return true
		}
	}

	return false
}
