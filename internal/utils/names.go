package utils

import (
	"strings" // String folding
)

// accentFold maps Vietnamese accented letters to their base ASCII letter.
var accentFold = map[rune]rune{}

func init() {
	groups := map[rune]string{
		'a': "àáạảãâầấậẩẫăằắặẳẵ",
		'e': "èéẹẻẽêềếệểễ",
		'i': "ìíịỉĩ",
		'o': "òóọỏõôồốộổỗơờớợởỡ",
		'u': "ùúụủũưừứựửữ",
		'y': "ỳýỵỷỹ",
		'd': "đ",
	}
	for base, accented := range groups {
		for _, r := range accented {
			accentFold[r] = base
		}
	}
}

// FoldName lowercases a full name, strips Vietnamese diacritics and removes
// whitespace, producing the name part of a generated login identifier.
func FoldName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if r == ' ' || r == '\t' {
			continue // Drop whitespace entirely
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LoginEmail builds the generated login identifier for a new account,
// e.g. "HS000001.nguyenvana.edu@edusmart".
func LoginEmail(customID, fullName string) string {
	return customID + "." + FoldName(fullName) + ".edu@edusmart"
}
