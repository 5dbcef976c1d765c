package bardfile

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/vango-dev/bardfile/internal/errors"
)

// Accept is a kind of file a field takes.
type Accept string

const (
	AcceptImage Accept = "image"
	AcceptVideo Accept = "video"
	AcceptPDF   Accept = "pdf"
)

var acceptPatterns = map[Accept]*regexp.Regexp{
	AcceptImage: regexp.MustCompile(`^image/.+$`),
	AcceptVideo: regexp.MustCompile(`^video/.+$`),
	AcceptPDF:   regexp.MustCompile(`^application/pdf$`),
}

// Extensions recognized when a file has no usable MIME type.
var acceptExtensions = map[Accept][]string{
	AcceptImage: {"bmp", "gif", "heic", "heif", "ico", "jfif", "jpeg", "jpg", "png", "psd", "svg", "tif", "tiff", "webp"},
	AcceptVideo: {"3gp", "avi", "flv", "m4v", "mkv", "mov", "mp4", "mpeg", "mpg", "ogv", "qt", "webm", "wmv"},
	AcceptPDF:   {"pdf"},
}

var acceptsSeparator = regexp.MustCompile(`,\s*`)

// ParseAccepts splits a comma separated accepts attribute. Unknown kinds are
// an E002 error; an empty string accepts everything.
func ParseAccepts(s string) ([]Accept, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []Accept
	for _, part := range acceptsSeparator.Split(s, -1) {
		a := Accept(strings.TrimSpace(part))
		if _, ok := acceptPatterns[a]; !ok {
			return nil, errors.New(errors.ErrUnknownAccepts).
				WithDetailf("unknown accepts type %q", part).
				WithSuggestion(`Use "image", "video" or "pdf", separated by commas`)
		}
		out = append(out, a)
	}
	return out, nil
}

// Matches reports whether f is of this kind, by MIME type or, failing that,
// by extension.
func (a Accept) Matches(f File) bool {
	if re, ok := acceptPatterns[a]; ok && f.MimeType != "" {
		return re.MatchString(f.MimeType)
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
	return ext != "" && slices.Contains(acceptExtensions[a], ext)
}

// FileType classifies f as image, video or pdf, or "unknown".
func FileType(f File) string {
	for _, a := range []Accept{AcceptVideo, AcceptImage, AcceptPDF} {
		if a.Matches(f) {
			return string(a)
		}
	}
	return "unknown"
}

// joinWords lists words the way a sentence does: "a", "a or b",
// "a, b, or c".
func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1, 2:
		return strings.Join(words, " or ")
	default:
		return strings.Join(words[:len(words)-1], ", ") + ", or " + words[len(words)-1]
	}
}
