package markup

import "strings"

// Element is an in-memory node. Its own Content precedes the text of its
// children, concatenated without separators as in HTML.
type Element struct {
	Roles    []Role
	Content  string
	Attrs    map[string]string
	Children []*Element
}

var _ Node = (*Element)(nil)

// El builds an element carrying a single role (zero for none).
func El(role Role, content string, children ...*Element) *Element {
	e := &Element{Content: content, Children: children}
	if role != 0 {
		e.Roles = []Role{role}
	}
	return e
}

// WithAttr sets an attribute and returns the element.
func (e *Element) WithAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
	return e
}

func (e *Element) has(role Role) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (e *Element) Find(role Role) (Node, bool) {
	for _, child := range e.Children {
		if child.has(role) {
			return child, true
		}
		if found, ok := child.Find(role); ok {
			return found, true
		}
	}
	return nil, false
}

func (e *Element) FindAll(role Role) []Node {
	var nodes []Node
	e.collect(role, &nodes)
	return nodes
}

func (e *Element) collect(role Role, nodes *[]Node) {
	for _, child := range e.Children {
		if child.has(role) {
			*nodes = append(*nodes, child)
		}
		child.collect(role, nodes)
	}
}

func (e *Element) Text(exclude ...Role) string {
	var b strings.Builder
	e.writeText(&b, exclude)
	return NormalizeText(b.String())
}

func (e *Element) writeText(b *strings.Builder, exclude []Role) {
	b.WriteString(e.Content)
	for _, child := range e.Children {
		if child.excluded(exclude) {
			continue
		}
		child.writeText(b, exclude)
	}
}

func (e *Element) excluded(roles []Role) bool {
	for _, r := range roles {
		if e.has(r) {
			return true
		}
	}
	return false
}

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}
