package domain

import "strings"

// Tree is the virtual filesystem exclusively owned by a single room.
// It maps absolute slash-delimited paths to nodes, rooted at "/".
// Empty path segments are ignored, so "//a//b" and "/a/b" address the
// same node. The root always exists, is a directory, and can never be
// removed or renamed.
//
// Tree is not safe for concurrent use; the owning room serializes
// access through its own mutex.
type Tree struct {
	root *Node
}

func NewTree() *Tree {
	root := NewDirectory()
	root.Path = "/"
	return &Tree{root: root}
}

func (t *Tree) Root() *Node {
	return t.root
}

// Resolve walks the tree from the root, one segment at a time.
// It reports false if any intermediate segment is missing or is a file
// (a path cannot descend through a file).
func (t *Tree) Resolve(path string) (*Node, bool) {
	current := t.root
	for _, segment := range splitPath(path) {
		if !current.IsDirectory() {
			return nil, false
		}
		child, ok := current.Children[segment]
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

// Upsert inserts or replaces the node at path, creating any missing
// intermediate directories along the way. An intermediate file blocking
// the path is replaced by a directory. The root itself cannot be
// replaced; upserting "/" is a no-op returning nil.
func (t *Tree) Upsert(path string, node *Node) *Node {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil
	}
	parent := t.root
	for i, segment := range segments[:len(segments)-1] {
		child, ok := parent.Children[segment]
		if !ok || !child.IsDirectory() {
			child = NewDirectory()
			child.Name = segment
			child.Path = joinPath(segments[:i+1])
			parent.Children[segment] = child
		}
		parent = child
	}
	node.Name = segments[len(segments)-1]
	if node.IsDirectory() && node.Children == nil {
		node.Children = make(map[string]*Node)
	}
	rebase(node, joinPath(segments))
	parent.Children[node.Name] = node
	return node
}

// Remove deletes the entry at path, subtree included for directories.
// A missing entry is not an error, only a reported outcome: it returns
// false and leaves the tree untouched. The root cannot be removed.
func (t *Tree) Remove(path string) bool {
	segments := splitPath(path)
	if len(segments) == 0 {
		return false
	}
	parent, ok := t.Resolve(joinPath(segments[:len(segments)-1]))
	if !ok || !parent.IsDirectory() {
		return false
	}
	name := segments[len(segments)-1]
	if _, ok := parent.Children[name]; !ok {
		return false
	}
	delete(parent.Children, name)
	return true
}

// Move relocates the node at oldPath to newPath, preserving content and
// children and recomputing every descendant path. Missing destination
// directories are auto-created. A source that does not resolve is a
// silent no-op; callers check the returned bool.
func (t *Tree) Move(oldPath, newPath string) bool {
	if len(splitPath(newPath)) == 0 {
		return false
	}
	node, ok := t.Resolve(oldPath)
	if !ok || node == t.root {
		return false
	}
	t.Remove(oldPath)
	t.Upsert(newPath, node)
	return true
}

// rebase pins the node's recorded path to its new position and rewrites
// the paths of its whole subtree to match.
func rebase(n *Node, path string) {
	n.Path = path
	for name, child := range n.Children {
		child.Name = name
		rebase(child, path+"/"+name)
	}
}

func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func joinPath(segments []string) string {
	return "/" + strings.Join(segments, "/")
}
