package repokit

// Binder closes a domain repository over a Queryer, keeping repository
// construction separate from where the connection pool lives
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain function into a Binder
type BindFunc[T any] func(Queryer) T

// Bind invokes the function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds after rejecting a nil Queryer, which is always a wiring bug
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
