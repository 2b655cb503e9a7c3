package entity

// County is one jurisdiction to crawl, keyed by its normalized name.
type County struct {
	Name      string
	SeedPages []string
}

// CountyList keeps counties in the order their key was first seen.
// Putting an existing key replaces its seed pages in place.
type CountyList struct {
	order []string
	pages map[string][]string
}

func NewCountyList() *CountyList {
	return &CountyList{pages: make(map[string][]string)}
}

// Put stores the seed pages for name, overwriting any earlier entry.
func (l *CountyList) Put(name string, seedPages []string) {
	if _, ok := l.pages[name]; !ok {
		l.order = append(l.order, name)
	}
	l.pages[name] = seedPages
}

// Len returns the number of distinct counties.
func (l *CountyList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// Counties returns a snapshot of the list in iteration order.
func (l *CountyList) Counties() []County {
	if l == nil {
		return nil
	}
	out := make([]County, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, County{Name: name, SeedPages: l.pages[name]})
	}
	return out
}
