package bridge

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/tidwall/gjson"
)

// errBodyNotJSON is the fixed message scripts observe when response.json()
// cannot parse the body. It surfaces as an ordinary thrown error.
var errBodyNotJSON = errors.New("response body is not valid JSON")

// responseObject exposes read-only accessors over the received response.
func (b *Bridge) responseObject() *goja.Object {
	obj := b.vm.NewObject()

	b.defineReadOnly(obj, "code", func() goja.Value { return b.vm.ToValue(b.resp.StatusCode) })
	b.defineReadOnly(obj, "status", func() goja.Value { return b.vm.ToValue(b.resp.StatusText) })
	b.defineReadOnly(obj, "responseTime", func() goja.Value { return b.vm.ToValue(b.resp.TimeMS) })
	b.defineReadOnly(obj, "headers", func() goja.Value { return b.vm.ToValue(b.resp.HeaderMap()) })

	_ = obj.Set("text", func() string {
		return b.resp.Body
	})
	_ = obj.Set("json", func() goja.Value {
		if !gjson.Valid(b.resp.Body) {
			panic(b.vm.NewGoError(errBodyNotJSON))
		}
		return b.vm.ToValue(gjson.Parse(b.resp.Body).Value())
	})

	return obj
}

// defineReadOnly installs a getter-only property on obj.
func (b *Bridge) defineReadOnly(obj *goja.Object, name string, get func() goja.Value) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})
	_ = obj.DefineAccessorProperty(name, getter, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}
