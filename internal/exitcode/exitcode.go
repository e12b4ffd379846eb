// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task reference).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates an AI service or export API error.
	BackendError = 3

	// StorageError indicates the local encrypted store could not be opened.
	StorageError = 4
)
