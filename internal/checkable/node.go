package checkable

// Node is any element of a composed tree. *Item is a leaf node.
type Node interface{}

// Container is a node with children
type Container interface {
	Children() []Node
}

// Panel is a plain container used to compose nested layouts
type Panel struct {
	id       string
	children []Node
}

// NewPanel creates a panel holding children in order
func NewPanel(id string, children ...Node) *Panel {
	return &Panel{id: id, children: children}
}

// ID returns the panel id
func (p *Panel) ID() string {
	return p.id
}

// Add appends children to the panel. A panel reached again while a group binds
// is skipped, so a cycle only loses the repeated subtree.
func (p *Panel) Add(children ...Node) {
	p.children = append(p.children, children...)
}

// Children returns the panel's children
func (p *Panel) Children() []Node {
	return p.children
}
