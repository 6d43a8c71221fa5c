package bridge

import (
	"github.com/dop251/goja"

	"github.com/loykin/apiscript/internal/assert"
)

// expectFunc implements pm.expect. The chain is rebuilt per call; the
// predicates close over the exported actual value, and the bare-property
// leaves (.ok/.true/.false) evaluate on property access.
func (b *Bridge) expectFunc(call goja.FunctionCall) goja.Value {
	actual := call.Argument(0).Export()

	be := b.vm.NewObject()
	_ = be.Set("below", func(bound float64) { b.check(assert.Below(actual, bound)) })
	_ = be.Set("above", func(bound float64) { b.check(assert.Above(actual, bound)) })
	b.defineEagerPredicate(be, "ok", func() error { return assert.Ok(actual) })
	b.defineEagerPredicate(be, "true", func() error { return assert.True(actual) })
	b.defineEagerPredicate(be, "false", func() error { return assert.False(actual) })

	have := b.vm.NewObject()
	_ = have.Set("property", func(name string) { b.check(assert.Property(actual, name)) })

	to := b.vm.NewObject()
	_ = to.Set("equal", func(expected goja.Value) { b.check(assert.Equal(actual, expected.Export())) })
	_ = to.Set("include", func(value goja.Value) { b.check(assert.Include(actual, value.Export())) })
	_ = to.Set("be", be)
	_ = to.Set("have", have)

	chain := b.vm.NewObject()
	_ = chain.Set("to", to)
	return chain
}

// defineEagerPredicate installs a property whose getter runs the predicate,
// throwing on failure and yielding true otherwise.
func (b *Bridge) defineEagerPredicate(obj *goja.Object, name string, pred func() error) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		b.check(pred())
		return b.vm.ToValue(true)
	})
	_ = obj.DefineAccessorProperty(name, getter, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

// check throws the assertion failure into the script as an error object.
func (b *Bridge) check(err error) {
	if err != nil {
		panic(b.vm.NewGoError(err))
	}
}
