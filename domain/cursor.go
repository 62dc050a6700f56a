package domain

// CursorPosition locates a member's cursor inside one workspace file.
type CursorPosition struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}
