// Package markup describes the inline markup tree consumed by the rich-text
// transformer and provides a small parser producing it.
package markup

// NodeType distinguishes markup tree nodes.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CharRefNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CharRefNode:
		return "charref"
	}
	return "unknown"
}

// RefType is the notation of a character reference.
type RefType int

const (
	NamedRef RefType = iota
	DecimalRef
	HexRef
)

func (t RefType) String() string {
	switch t {
	case NamedRef:
		return "name"
	case DecimalRef:
		return "decimal"
	case HexRef:
		return "hex"
	}
	return "unknown"
}

// Node is a single markup tree node. Elements use Name, Attributes, Children
// and Void, text nodes use Value, character references use RefType and Value
// (entity name, decimal digits or hex digits).
type Node struct {
	Type       NodeType
	Name       string
	Attributes map[string]string
	Children   []Node
	Void       bool
	Value      string
	RefType    RefType
}

// Attr returns attribute value and whether it is present.
func (n Node) Attr(name string) (string, bool) {
	v, ok := n.Attributes[name]
	return v, ok
}

// Element creates element node which may hold children.
func Element(name string, attrs map[string]string, children ...Node) Node {
	return Node{Type: ElementNode, Name: name, Attributes: attrs, Children: children}
}

// VoidElement creates element node which cannot hold children (br, img).
func VoidElement(name string, attrs map[string]string) Node {
	return Node{Type: ElementNode, Name: name, Attributes: attrs, Void: true}
}

// Text creates text node.
func Text(value string) Node {
	return Node{Type: TextNode, Value: value}
}

// Ref creates character reference node.
func Ref(refType RefType, value string) Node {
	return Node{Type: CharRefNode, RefType: refType, Value: value}
}
