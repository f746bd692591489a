// Package cmd implements the command-line interface for fsSync. It exposes
// the filesystem lock and counter primitives to shell scripts and doubles as
// the multi-process test harness for them.
//
// The package is organized into several subpackages:
//
//   - lock: Commands for locking operations (acquire, hold, wait, exists, path)
//   - counter: Commands for counter operations (set, get, inc, has, del, path, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through the environment with the FSSYNC_ prefix,
// e.g. FSSYNC_ROOT=/mnt/shared/sync. .env and .env.local files in the working
// directory are loaded as well.
//
// See fssync -help for a list of all commands.
package cmd
