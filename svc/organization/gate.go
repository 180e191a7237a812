package organization

// AssignableRoles returns the subset of roles the actor may grant to others
// via invitation: every role strictly below the actor's authority
// (hierarchy_level strictly greater) that is not the owner role.
//
// The owner role is excluded categorically, not by level comparison:
// ownership transfer is a separate privileged operation, never an invitation.
// An owner actor sits at level 0, so the strict comparison naturally admits
// every non-owner role. An empty result is a valid state (an organization
// with only the owner role defined) and callers surface it as "no roles
// available to invite with", not as an error.
func AssignableRoles(actor Role, all []Role) []Role {
	out := make([]Role, 0, len(all))
	for _, role := range all {
		if role.IsOrganizationOwner {
			continue
		}
		if role.HierarchyLevel > actor.HierarchyLevel {
			out = append(out, role)
		}
	}
	return out
}

// CanAssign reports whether the actor's role may grant the target role.
// Strictly weaker only: equal levels are rejected.
func CanAssign(actor Role, target Role) bool {
	if target.IsOrganizationOwner {
		return false
	}
	return target.HierarchyLevel > actor.HierarchyLevel
}
