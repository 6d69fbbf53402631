// Package rpmbuild wraps the rpmbuild CLI and locates the artifact it
// produces.
package rpmbuild
