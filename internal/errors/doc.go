// Package errors provides coded, structured errors for bardfile.
//
// Each error has a unique code (e.g., "E003") that maps to a category and a
// short message. Callers add a detail, a suggestion or a wrapped cause with
// the builder methods:
//
//	err := errors.New(errors.ErrBlobNotFound).
//	    WithDetailf("no blob with signed id %q", id).
//	    WithSuggestion("Upload the file again")
//
// errors.Is matches BardErrors by code, so callers can test for a class of
// failure without inspecting messages.
package errors
