package profile

import (
	"regexp"
	"strings"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
)

var handlePattern = regexp.MustCompile(`^[a-z][a-z0-9._]{2,29}$`)

// Canonicalize lowercases an ASCII handle and checks it against the handle policy.
func Canonicalize(input string) (string, error) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "@"))
	if input == "" {
		return "", apperr.New(apperr.CodeInvalidArgument, "handle is required")
	}

	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if ch > 0x7f {
			return "", apperr.New(apperr.CodeInvalidArgument, "handle must be ASCII")
		}
		if ch >= 'A' && ch <= 'Z' {
			ch = ch - 'A' + 'a'
		}
		b.WriteByte(ch)
	}

	handle := b.String()
	if !handlePattern.MatchString(handle) {
		return "", apperr.New(apperr.CodeInvalidArgument,
			"handle must start with a letter and use 3-30 of a-z, 0-9, '.' or '_'")
	}
	return handle, nil
}
