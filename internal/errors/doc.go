// Package errors is the error vocabulary of the compendium tooling.
//
// Errors carry a Code, a user facing message, an optional cause and metadata.
// Importers attach the entity type and slug of the record that failed:
//
//	return errors.Wrap(err, "upsert spell").WithEntity("spell", slug)
//
// The code survives wrapping, so callers branch on it instead of on strings:
//
//	if errors.IsNotFound(err) {
//	    // create a stub
//	}
//
// Codes convert to gRPC status codes for the compendium service and to
// process exit codes for the console commands.
package errors
