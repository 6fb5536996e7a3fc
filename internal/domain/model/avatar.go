package model

// FallbackAvatarSource is the provider consulted only when no other
// provider returned a candidate.
const FallbackAvatarSource = "gravatar"

// AvatarCandidate is an image proposed by an avatar provider.
type AvatarCandidate struct {
	SourceName  string
	ImageBlob   []byte
	ContentType string
}

// IsFallback reports whether the candidate came from the fallback source.
func (c AvatarCandidate) IsFallback() bool {
	return c.SourceName == FallbackAvatarSource
}
