package bridge

import (
	"errors"

	"github.com/dop251/goja"
)

// ExceptionMessage extracts the human-readable message from a script
// exception. Error objects contribute their message property; anything else
// thrown (strings, numbers) is rendered as-is. Non-exception errors fall
// back to Error().
func ExceptionMessage(err error) string {
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return err.Error()
	}
	val := ex.Value()
	if val == nil {
		return ex.Error()
	}
	if obj, ok := val.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return val.String()
}
