package diag

// Bag keeps diagnostics in emission order. Unlike a sorted sink, the order of
// Items is the order in which the checker visited the IR, so identical input
// always yields an identical list.
type Bag struct {
	items []Diagnostic
}

func NewBag(capacity int) *Bag {
	if capacity < 0 {
		capacity = 0
	}
	return &Bag{items: make([]Diagnostic, 0, capacity)}
}

// Add appends d. It never fails.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends every diagnostic of other, keeping both orders.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Filter returns a new Bag holding the diagnostics for which keep is true.
// Relative order is preserved.
func (b *Bag) Filter(keep func(Diagnostic) bool) *Bag {
	out := NewBag(len(b.items))
	for _, d := range b.items {
		if keep(d) {
			out.items = append(out.items, d)
		}
	}
	return out
}

// Summary counts diagnostics per severity.
type Summary struct {
	Total   int `json:"total"`
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// Summary computes counts over the current contents.
func (b *Bag) Summary() Summary {
	var s Summary
	for i := range b.items {
		s.Total++
		switch b.items[i].Severity {
		case SevError:
			s.Error++
		case SevWarning:
			s.Warning++
		default:
			s.Info++
		}
	}
	return s
}

// CodeFilter builds a predicate keeping only the listed codes. An empty set
// keeps everything.
func CodeFilter(codes []Code) func(Diagnostic) bool {
	if len(codes) == 0 {
		return func(Diagnostic) bool { return true }
	}
	set := make(map[Code]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(d Diagnostic) bool {
		_, ok := set[d.Code]
		return ok
	}
}
