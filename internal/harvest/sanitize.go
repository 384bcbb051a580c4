package harvest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// unsafeReplacer maps characters that are not allowed in file names to underscores
var unsafeReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"/", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
	" ", "_",
)

// Sanitize turns a species or category name into a file system safe name.
// The name is NFC normalized so that visually identical names map to the same path.
func Sanitize(name string) string {
	return unsafeReplacer.Replace(norm.NFC.String(name))
}
