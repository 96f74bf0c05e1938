package engine

// ============================================================================
// RECORD VIEW — Zero-copy access to typed rows
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
//   DomainView[T]  — reads typed structs via accessor functions
//   SubView        — a selection of rows of a DomainView (row indices only)
//
// Selections never nest: filtering a SubView yields another SubView over the
// same root, so Indices and Pick are a single lookup.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// ============================================================================
// SUB VIEW — selected rows of a root view
// ============================================================================

// SubView selects rows of a root view by index, in selection order.
type SubView struct {
	root RecordView
	rows []int
}

// newSubView selects positions of parent. When parent is itself a SubView the
// positions are translated to root rows so the result stays flat.
func newSubView(parent RecordView, positions []int) RecordView {
	sv, ok := parent.(*SubView)
	if !ok {
		return &SubView{root: parent, rows: positions}
	}
	rows := make([]int, len(positions))
	for i, p := range positions {
		rows[i] = sv.rows[p]
	}
	return &SubView{root: sv.root, rows: rows}
}

func (v *SubView) Len() int { return len(v.rows) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.rows) {
		return ""
	}
	return v.root.Dimension(v.rows[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.rows) {
		return 0
	}
	return v.root.Measure(v.rows[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.root.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.root.MeasureKeys() }

// Indices returns the root row index of every position of view.
// For a root view this is 0..Len()-1.
func Indices(view RecordView) []int {
	if sv, ok := view.(*SubView); ok {
		out := make([]int, len(sv.rows))
		copy(out, sv.rows)
		return out
	}
	out := make([]int, view.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// Pick copies the rows of data selected by view, in view order. view must be
// data's DomainView or a selection of it. The result is never nil.
func Pick[T any](data []T, view RecordView) []T {
	idx := Indices(view)
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		out = append(out, data[i])
	}
	return out
}

// ============================================================================
// DOMAIN ADAPTER — typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[dataset.MemberRecord]().
//	    Dimension("user_id", func(m dataset.MemberRecord) string { return m.UserID }).
//	    Measure("messages_posted", func(m dataset.MemberRecord) float64 { return float64(m.MessagesPosted) })
//
//	view := adapter.Bind(members)
//	total := engine.SumMeasure(view, "messages_posted")
//
// ============================================================================

// DomainAdapter declares how to read a struct type as dimensions and
// measures. Declare once at package init, bind per slice.
type DomainAdapter[T any] struct {
	dimKeys  []string
	measKeys []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates an adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a string accessor. Re-registering a key replaces it.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimKeys = append(a.dimKeys, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a numeric accessor. Re-registering a key replaces it.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.measKeys = append(a.measKeys, key)
	}
	a.meas[key] = fn
	return a
}

// Bind wraps data without copying it.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{rows: data, adapter: a}
}

// DomainView reads rows of T through an adapter's accessors.
type DomainView[T any] struct {
	rows    []T
	adapter *DomainAdapter[T]
}

func (v *DomainView[T]) Len() int { return len(v.rows) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	fn, ok := v.adapter.dims[key]
	if !ok || i < 0 || i >= len(v.rows) {
		return ""
	}
	return fn(v.rows[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	fn, ok := v.adapter.meas[key]
	if !ok || i < 0 || i >= len(v.rows) {
		return 0
	}
	return fn(v.rows[i])
}

func (v *DomainView[T]) DimensionKeys() []string { return v.adapter.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.adapter.measKeys }
