// Package extract scans assistant messages for fenced code blocks that
// declare a destination file path, turning them into discrete file records
// the user can persist as project files.
package extract

import "regexp"

// File is a code block lifted out of an assistant message. Content is the
// raw block body, byte-for-byte as it appeared between the attribute line
// and the closing fence. Language is advisory, taken from the fence tag.
type File struct {
	Language string
	Path     string
	Content  string
}

// fileBlock matches fenced blocks of the exact shape the system directive
// asks models to produce:
//
//	```javascript file="app/scraper.js"
//	// code here
//	```
//
// A fence without the file attribute is illustrative code, not a file, and
// deliberately does not match. An unterminated fence never matches either:
// under-extraction is preferred over extracting a truncated block. The body
// capture is lazy so each block ends at its own closing fence.
var fileBlock = regexp.MustCompile("(?s)```(\\w+)\\s+file=\"([^\"]+)\"\\s*\\n(.*?)```")

// Files returns all file-annotated blocks in text, in order of appearance.
// Duplicate paths are all returned; upsert-by-path at materialization time
// means the last one wins. Files is pure: the same text always yields the
// same list.
func Files(text string) []File {
	matches := fileBlock.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	files := make([]File, 0, len(matches))
	for _, m := range matches {
		files = append(files, File{
			Language: m[1],
			Path:     m[2],
			Content:  m[3],
		})
	}
	return files
}

// HasFiles reports whether text contains at least one file-annotated block.
// Cheaper than Files when only the create-files affordance is needed.
func HasFiles(text string) bool {
	return fileBlock.MatchString(text)
}

// ReplaceFiles rewrites every file-annotated block in text with the string
// returned by repl. Used by the HTML renderer to swap raw fences for styled
// file cards while leaving surrounding prose untouched.
func ReplaceFiles(text string, repl func(File) string) string {
	return fileBlock.ReplaceAllStringFunc(text, func(block string) string {
		m := fileBlock.FindStringSubmatch(block)
		return repl(File{Language: m[1], Path: m[2], Content: m[3]})
	})
}
