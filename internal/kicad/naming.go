package kicad

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sanitize replaces every rune that is not a letter, digit, underscore or
// hyphen with an underscore. Titles are NFC-normalized first so composed and
// decomposed spellings map to the same name.
func Sanitize(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, norm.NFC.String(title))
}

// ComponentName is the library-wide name of a component's symbol and
// footprint.
func ComponentName(title, id string) string {
	return Sanitize(title) + "_" + id
}

// ModelPath builds the mesh reference embedded in a footprint. Project-relative
// paths are rooted at KIPRJMOD, global ones at the given environment variable.
func ModelPath(libName, modelName string, projectRelative bool, globalEnv string) string {
	root := "${KIPRJMOD}"
	if !projectRelative {
		root = "${" + globalEnv + "}"
	}
	return path.Join(root, libName+".3dshapes", modelName+".step")
}
