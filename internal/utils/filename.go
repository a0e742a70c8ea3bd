package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxFilenameBytes leaves room for an extension within the usual 255-byte limit.
const maxFilenameBytes = 200

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	collapsibleSpace     = regexp.MustCompile(`\s+`)
	obsidianReplacer     = strings.NewReplacer("#", "", "[", "(", "]", ")")
)

// SanitizeFilename makes name safe as a file name on common filesystems and
// inside an Obsidian vault. Empty results become "Untitled".
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = collapsibleSpace.ReplaceAllString(name, " ")
	name = obsidianReplacer.Replace(strings.TrimSpace(name))
	name = strings.TrimSpace(truncateUTF8(name, maxFilenameBytes))
	if name == "" {
		return "Untitled"
	}
	return name
}

// BookFilename names a book's export file as "Title - Author", without extension.
func BookFilename(title, author string) string {
	if strings.TrimSpace(author) == "" {
		return SanitizeFilename(title)
	}
	return SanitizeFilename(title + " - " + author)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
