package navigation

import "strings"

// Element is the focused UI element and its ancestors.
type Element interface {
	Tag() string
	Attr(name string) (string, bool)
	Parent() Element
}

// IsTypingContext reports whether key presses belong to an editable
// element: an input, textarea or select, anything content-editable, or a
// textbox role. Ancestors are inspected too, since focus can land on a
// nested element. A nil element is never a typing context.
func IsTypingContext(e Element) bool {
	editableDecided := false
	for ; e != nil; e = e.Parent() {
		switch strings.ToLower(e.Tag()) {
		case "input", "textarea", "select":
			return true
		}
		if role, ok := e.Attr("role"); ok && strings.EqualFold(role, "textbox") {
			return true
		}
		if v, ok := e.Attr("contenteditable"); ok && !editableDecided {
			// The nearest declaration wins.
			editableDecided = true
			if !strings.EqualFold(v, "false") {
				return true
			}
		}
	}
	return false
}

// Node is a plain Element.
type Node struct {
	TagName string
	Attrs   map[string]string
	Up      *Node
}

func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return n.TagName
}

func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) Parent() Element {
	if n == nil || n.Up == nil {
		return nil
	}
	return n.Up
}
