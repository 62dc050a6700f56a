// Package domain contains core concepts of the collaborative workspace.
// This file defines workspace tree entries and their invariants.
// No runtime, network, or UI logic should be added here.
package domain

type NodeKind string

const (
	FileNode      NodeKind = "file"
	DirectoryNode NodeKind = "directory"
)

// Node is a single entry of a room workspace: a UTF-8 text file, or a
// directory owning its children by name. The Path field is always kept
// equal to the node's position in the tree; callers never set it
// directly, tree operations do.
type Node struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Kind     NodeKind         `json:"type"`
	Content  string           `json:"content,omitempty"`
	Children map[string]*Node `json:"children,omitempty"`
}

func NewFile(content string) *Node {
	return &Node{Kind: FileNode, Content: content}
}

func NewDirectory() *Node {
	return &Node{Kind: DirectoryNode, Children: make(map[string]*Node)}
}

func (n *Node) IsDirectory() bool {
	return n.Kind == DirectoryNode
}

// Clone returns a deep copy of the node and its entire subtree, so a
// snapshot handed to a sink can never alias the room's live tree.
func (n *Node) Clone() *Node {
	clone := &Node{Name: n.Name, Path: n.Path, Kind: n.Kind, Content: n.Content}
	if n.Children != nil {
		clone.Children = make(map[string]*Node, len(n.Children))
		for name, child := range n.Children {
			clone.Children[name] = child.Clone()
		}
	}
	return clone
}
