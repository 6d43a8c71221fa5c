package bridge

import (
	"github.com/dop251/goja"

	"github.com/loykin/apiscript/internal/state"
)

// consoleChannels are the channels the console surrogate records.
var consoleChannels = []string{"log", "error", "warn", "info"}

// consoleObject captures console calls as ordered log entries instead of
// writing anywhere. Ordering is exactly statement order, interleaved with
// any state mutations the script makes between calls.
func (b *Bridge) consoleObject() *goja.Object {
	obj := b.vm.NewObject()
	for _, ch := range consoleChannels {
		channel := ch
		_ = obj.Set(channel, func(call goja.FunctionCall) goja.Value {
			values := make([]any, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				values = append(values, arg.Export())
			}
			b.logs = append(b.logs, state.LogEntry{Channel: channel, Values: values})
			return goja.Undefined()
		})
	}
	return obj
}
