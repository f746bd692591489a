package pathmap

// IPathMapper maps keys to sharded file paths below a root directory.
type IPathMapper interface {
	// Resolve returns the path of the file backing key within category.
	// It never fails and returns the same path for the same inputs as long as the root is unchanged.
	Resolve(key, category string) (path string)

	// EnsureDirectories creates every missing directory between the root and the parent of path.
	// Directories that already exist (or are created concurrently by another process) are not an error.
	// An fserr.ErrStorageUnavailable error is returned if a directory cannot be created.
	EnsureDirectories(path string) (err error)

	// Root returns the configured root directory.
	Root() (root string)

	// SetRoot changes the root directory for all subsequent Resolve calls.
	SetRoot(root string)
}
