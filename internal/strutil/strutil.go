package strutil

import "strings"

func LStripWS(str string) string {
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case ' ', '\t':
		default:
			return str[i:]
		}
	}

	return ""
}

func RStripWS(str string) string {
	for i := len(str); i > 0; i-- {
		switch str[i-1] {
		case ' ', '\t':
		default:
			return str[:i]
		}
	}

	return ""
}

func StripWS(str string) string {
	return RStripWS(LStripWS(str))
}

// CutToken splits off the first element of a comma-separated list, stripping surrounding
// whitespaces. more is false if there was no comma, so the token was the last element. Empty
// elements are returned as they are, so "a,,b" results in three tokens, the second one
// being empty.
func CutToken(list string) (token, rest string, more bool) {
	comma := strings.IndexByte(list, ',')
	if comma == -1 {
		return StripWS(list), "", false
	}

	return StripWS(list[:comma]), list[comma+1:], true
}
