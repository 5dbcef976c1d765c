package bardfile

import (
	stderrors "errors"
	"strings"

	"github.com/c2h5oh/datasize"

	"github.com/vango-dev/bardfile/internal/errors"
)

// formatBytes renders a size for validation messages.
func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return datasize.ByteSize(n).HumanReadable()
}

func (f *Field) subject() string {
	if f.Label == "" {
		return "File"
	}
	return f.Label
}

// validateFile checks one file against the field's accepts list and max
// size. The result joins an E007 and an E006 error when both fail.
func (f *Field) validateFile(file File) error {
	var errs []error
	if len(f.Accepts) > 0 {
		ok := false
		for _, a := range f.Accepts {
			if a.Matches(file) {
				ok = true
				break
			}
		}
		if !ok {
			words := make([]string, len(f.Accepts))
			for i, a := range f.Accepts {
				words[i] = string(a)
			}
			errs = append(errs, errors.New(errors.ErrFileTypeRefused).
				WithDetailf("%s must be a %s.", f.subject(), joinWords(words)))
		}
	}
	if f.Max > 0 && file.Size > int64(f.Max.Bytes()) {
		errs = append(errs, errors.New(errors.ErrFileTooLarge).
			WithDetailf("%s must be smaller than %s, and %q is %s. Please attach a smaller file.",
				f.subject(), formatBytes(int64(f.Max.Bytes())), file.Name, formatBytes(file.Size)))
	}
	return stderrors.Join(errs...)
}

// Validate checks every attached file. The returned error joins one error
// per failed check.
func (f *Field) Validate() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.validateLocked(f.files)
}

func (f *Field) validateLocked(files []File) error {
	var errs []error
	for _, file := range files {
		if err := f.validateFile(file); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// CheckValidity validates the attached files and records the validation
// message, empty when they are all valid.
func (f *Field) CheckValidity() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkValidityLocked()
}

func (f *Field) checkValidityLocked() bool {
	f.validationMessage = validationMessage(f.validateLocked(f.files))
	return f.validationMessage == ""
}

// ValidationMessage returns the message of the last validity check.
func (f *Field) ValidationMessage() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.validationMessage
}

// validationMessage joins the user-facing details of every coded error in
// err with spaces.
func validationMessage(err error) string {
	if err == nil {
		return ""
	}
	var parts []string
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		var be *errors.BardError
		if stderrors.As(err, &be) && be.Detail != "" {
			parts = append(parts, be.Detail)
			return
		}
		parts = append(parts, err.Error())
	}
	walk(err)
	return strings.Join(parts, " ")
}
