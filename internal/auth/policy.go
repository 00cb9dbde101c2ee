package auth

// CanAccess reports whether an actor may read, update or delete a resource
// owned by ownerID. Admins may touch everything; everyone else only their own.
func CanAccess(ownerID, actorID int64, actorIsAdmin bool) bool {
	return actorIsAdmin || ownerID == actorID
}

// CanDeleteAccount enforces that nobody, admins included, deletes themselves.
func CanDeleteAccount(targetID, actorID int64) bool {
	return targetID != actorID
}
