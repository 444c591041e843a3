package reveal

// Visible reports whether restricted content is shown to a viewer.
// Independent of unlock state; callers must check Unlocked first, since a
// locked gift shows nothing regardless of secrecy.
func Visible(isSecret, isAuthenticated bool) bool {
	return !isSecret || isAuthenticated
}
