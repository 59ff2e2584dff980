// Package render implements the video render pipeline: fetching shot
// assets, normalizing them into uniform clips, concatenating the clips in
// timeline order, and publishing the final artifact.
package render

// SourceKind identifies the kind of media backing a shot.
type SourceKind int

const (
	// SourceNone means the shot has no usable media and is skipped.
	SourceNone SourceKind = iota
	// SourceVideo means the shot is backed by a pre-rendered video clip.
	SourceVideo
	// SourceImage means the shot is backed by a still image.
	SourceImage
)

// String returns a human-readable name for the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceVideo:
		return "video"
	case SourceImage:
		return "image"
	default:
		return "none"
	}
}

// ShotInput is one timeline entry of a render request. At most one of
// VideoURL and ImageURL is used; VideoURL wins when both are set.
type ShotInput struct {
	// ID is an opaque identifier used for diagnostics only.
	ID string
	// VideoURL optionally points at a pre-rendered video clip.
	VideoURL string
	// ImageURL optionally points at a still image.
	ImageURL string
}

// Request describes one render invocation: an ordered shot list plus the
// project label used to namespace the output artifact.
type Request struct {
	// Shots is the timeline. Order is significant and preserved in the
	// final video.
	Shots []ShotInput
	// ProjectLabel namespaces output paths. It is sanitized to a
	// filesystem-safe token before use.
	ProjectLabel string
}

// Shot is a resolved timeline entry: the single source that will be
// rendered for the shot, plus its original timeline position.
type Shot struct {
	// Index is the position in the request's shot list. The final video's
	// temporal order follows this index, never completion order.
	Index int
	// ID is the opaque diagnostic identifier from the request.
	ID string
	// Kind is the resolved source kind.
	Kind SourceKind
	// URL is the source URL, empty when Kind is SourceNone.
	URL string
}

// resolve picks the single source for a shot. Video takes precedence over
// image when both are present; the upstream caller already applies this
// rule, but it is enforced here as well.
func resolve(index int, in ShotInput) Shot {
	s := Shot{Index: index, ID: in.ID}
	switch {
	case in.VideoURL != "":
		s.Kind = SourceVideo
		s.URL = in.VideoURL
	case in.ImageURL != "":
		s.Kind = SourceImage
		s.URL = in.ImageURL
	default:
		s.Kind = SourceNone
	}
	return s
}

// ResolveShots maps a request's shot list to resolved shots, preserving
// order and indices. Shots without any source resolve to SourceNone.
func ResolveShots(inputs []ShotInput) []Shot {
	shots := make([]Shot, len(inputs))
	for i, in := range inputs {
		shots[i] = resolve(i, in)
	}
	return shots
}
