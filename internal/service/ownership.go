// Package service contains the application's business logic.
package service

import "poetryclub/internal/models"

// Ownership rules are kept as pure functions so every write path applies the
// same checks. Services translate a false result into Forbidden.

// CanMutatePoem reports whether the caller may edit or delete the poem.
// Poems are mutable by their author only; admins moderate through review
// instead of editing.
func CanMutatePoem(callerID, authorID uint) bool {
	return callerID == authorID
}

// CanDeleteComment reports whether the caller may delete the comment.
func CanDeleteComment(callerID uint, callerRole models.Role, ownerID uint) bool {
	return callerRole == models.RoleAdmin || callerID == ownerID
}

// CanViewUser reports whether the caller may read the target's full profile.
func CanViewUser(callerID uint, callerRole models.Role, targetID uint) bool {
	return callerRole == models.RoleAdmin || callerID == targetID
}

// CanListUserPoems reports whether the caller may list the owner's poems,
// drafts and unreviewed work included.
func CanListUserPoems(callerID uint, callerRole models.Role, ownerID uint) bool {
	return callerRole == models.RoleAdmin || callerID == ownerID
}

// CanViewHiddenPoem reports whether the caller may read a poem that is not
// publicly visible (a draft or a poem outside the Approved state).
func CanViewHiddenPoem(callerID uint, callerRole models.Role, authorID uint) bool {
	return callerRole == models.RoleAdmin || callerID == authorID
}

// PubliclyVisible reports whether the poem appears in public listings.
func PubliclyVisible(poem *models.Poem) bool {
	return !poem.IsDraft && poem.Status == models.PoemApproved
}
