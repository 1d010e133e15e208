package core

import (
	"reflect"
	"runtime"
)

// Task is the unit of work (Closure).
// It takes no arguments and returns nothing; it must be safe to run on
// a goroutine other than the submitter's.
type Task func()

const anonymousTaskName = "anonymous"

// resolveTaskName returns the symbol name of the task function for logs.
func resolveTaskName(task Task) string {
	if task == nil {
		return anonymousTaskName
	}

	v := reflect.ValueOf(task)
	if v.Kind() != reflect.Func {
		return anonymousTaskName
	}

	pc := v.Pointer()
	if pc == 0 {
		return anonymousTaskName
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return anonymousTaskName
	}

	name := fn.Name()
	if name == "" {
		return anonymousTaskName
	}
	return name
}
