package git

// ShortSha abbreviates a commit sha to seven characters.
func ShortSha(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
