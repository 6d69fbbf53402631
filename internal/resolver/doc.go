// Package resolver is the pipeline's input stage: it ensures exactly one
// installer artifact exists on local disk, either a user-supplied file or a
// single-attempt download of the architecture-specific upstream installer.
package resolver
