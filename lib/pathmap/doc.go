// Package pathmap derives the on-disk location of a lock or counter from a
// (key, category) pair.
//
// Layout:
//
//	<root>/<category>/<h[0:2]>/<h[2:4]>/<h>
//
// where h is the 32 character lowercase hex MD5 digest of the key. The two
// levels of two character prefixes bound the number of entries per directory
// for large key spaces, and the category keeps different kinds of primitives
// (or different use cases) apart even when they share a key.
//
// Resolve is a pure function of the key, the category and the configured
// root. The digest only depends on the key, so it is memoized per process and
// the memo survives SetRoot.
//
// EnsureDirectories creates missing parent directories one segment at a time
// with mkdir and treats "already exists" as success. Several processes can
// therefore race on the same prefix without any of them failing.
package pathmap
