package bridge

import "github.com/dop251/goja"

// requestObject exposes the request working copy: url/method/body as paired
// getter/setter properties and a headers object with add/remove/get/asMap.
func (b *Bridge) requestObject() *goja.Object {
	obj := b.vm.NewObject()

	b.defineAccessor(obj, "url",
		func() string { return b.req.URL },
		func(v goja.Value) { b.req.URL = v.String() })
	b.defineAccessor(obj, "method",
		func() string { return b.req.Method },
		func(v goja.Value) { b.req.Method = v.String() })
	b.defineAccessor(obj, "body",
		func() string { return b.req.Body },
		func(v goja.Value) { b.req.Body = v.String() })

	headers := b.vm.NewObject()
	_ = headers.Set("add", func(name string, value goja.Value) {
		b.req.SetHeader(name, value.String())
	})
	_ = headers.Set("remove", func(name string) {
		b.req.RemoveHeader(name)
	})
	_ = headers.Set("get", func(name string) goja.Value {
		if v, ok := b.req.GetHeader(name); ok {
			return b.vm.ToValue(v)
		}
		return goja.Undefined()
	})
	_ = headers.Set("asMap", func() map[string]string {
		return b.req.HeaderMap()
	})
	_ = obj.Set("headers", headers)

	return obj
}

// defineAccessor installs a getter/setter property pair on obj.
func (b *Bridge) defineAccessor(obj *goja.Object, name string, get func() string, set func(goja.Value)) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return b.vm.ToValue(get())
	})
	setter := b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0))
		return goja.Undefined()
	})
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
}
