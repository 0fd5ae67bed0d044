package console

// MenuItem is one navigation link.
type MenuItem struct {
	Name  string
	Title string
	Href  string
}

// Active reports whether the item links to the page named current.
func (m MenuItem) Active(current string) bool {
	return m.Name == current
}

// MenuFor builds one menu entry per schema, in the given order.
func MenuFor(prefix string, schemas []*Schema) []MenuItem {
	out := make([]MenuItem, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, MenuItem{Name: s.Name, Title: s.Title, Href: prefix + "/" + s.Name})
	}
	return out
}
