package quadmosaic

// Error types attached to the errors returned by this package. Check them with
// errors.IsType from github.com/aukilabs/go-tooling/pkg/errors.
const (
	// A leaf query asked for a depth deeper than the tree.
	ErrTypeInvalidDepth = "invalid-depth"
	// Options failed validation.
	ErrTypeInvalidOptions = "invalid-options"
	// The raster has no pixels to build a tree from.
	ErrTypeEmptyImage = "empty-image"
)
