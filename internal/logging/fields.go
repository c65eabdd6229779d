// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldConfig = "config"
	FieldFlavor = "flavor"
	FieldFormat = "format"
	FieldTheme  = "theme"
	FieldLocale = "locale"
	FieldJobs   = "jobs"

	// Rendering fields.
	FieldAsset    = "asset"
	FieldLanguage = "language"
	FieldRuns     = "runs"
	FieldDigest   = "digest"
	FieldElapsed  = "elapsed"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesRendered   = "files_rendered"
	FieldFilesFailed     = "files_failed"
	FieldCacheHits       = "cache_hits"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
