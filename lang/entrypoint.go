package lang

import "regexp"

var (
	javaPublicClassRe = regexp.MustCompile(`public\s+(?:final\s+|abstract\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	javaAnyClassRe    = regexp.MustCompile(`class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
)

// JavaEntryClass scans source text for the public class name. Java
// refuses to compile a file whose name differs from its public class,
// so the runner names the materialized source after this result.
// This is a structural heuristic: first public class, then any class,
// then "Main".
func JavaEntryClass(source string) string {
	if m := javaPublicClassRe.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	if m := javaAnyClassRe.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return "Main"
}
