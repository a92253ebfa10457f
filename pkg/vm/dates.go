package vm

import (
	"time"

	"github.com/edadma/slate-sub000/pkg/value"
)

// registerDateTimeClasses wires LocalDate/LocalTime/LocalDateTime/Instant
// factories and accessors (spec.md §6.3's host global class list) onto
// Go's time package, the teacher's own date/time grounding for this
// domain.
func (vm *VM) registerDateTimeClasses(dateClass, timeClass, dateTimeClass, instantClass *value.ClassObj) {
	dateClass.Factory = &NativeFn{FnName: "LocalDate", FnArity: 3, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewLocalDate(int(args[0].AsInt32()), int(args[1].AsInt32()), int(args[2].AsInt32())), nil
	}}
	defineMethod(dateClass, "year", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.LocalDateObj).Year)), nil
	})
	defineMethod(dateClass, "month", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.LocalDateObj).Month)), nil
	})
	defineMethod(dateClass, "day", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.LocalDateObj).Day)), nil
	})
	defineMethod(dateClass, "dayOfWeek", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		d := args[0].Heap().(*value.LocalDateObj)
		t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		return value.Int32(int32(t.Weekday())), nil
	})
	defineMethod(dateClass, "plusDays", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		d := args[0].Heap().(*value.LocalDateObj)
		t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(args[1].AsInt32()))
		return value.NewLocalDate(t.Year(), int(t.Month()), t.Day()), nil
	})
	defineMethod(dateClass, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
	defineMethod(dateClass, "compare", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a := args[0].Heap().(*value.LocalDateObj)
		b, ok := args[1].Heap().(*value.LocalDateObj)
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "cannot compare LocalDate to %s", args[1].TypeName())
		}
		return value.Int32(int32(compareDate(a, b))), nil
	})

	timeClass.Factory = &NativeFn{FnName: "LocalTime", FnArity: -1, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		ns := 0
		if len(args) > 3 {
			ns = int(args[3].AsInt32())
		}
		return value.NewLocalTime(int(args[0].AsInt32()), int(args[1].AsInt32()), int(args[2].AsInt32()), ns), nil
	}}
	defineMethod(timeClass, "hour", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.LocalTimeObj).Hour)), nil
	})
	defineMethod(timeClass, "minute", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.LocalTimeObj).Minute)), nil
	})
	defineMethod(timeClass, "second", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int32(int32(args[0].Heap().(*value.LocalTimeObj).Second)), nil
	})
	defineMethod(timeClass, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})

	dateTimeClass.Factory = &NativeFn{FnName: "LocalDateTime", FnArity: 2, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		d, ok1 := args[0].Heap().(*value.LocalDateObj)
		t, ok2 := args[1].Heap().(*value.LocalTimeObj)
		if !ok1 || !ok2 {
			return value.Value{}, value.NewError(value.ErrType, "LocalDateTime(date, time) requires a LocalDate and a LocalTime")
		}
		return value.NewLocalDateTime(d, t), nil
	}}
	defineMethod(dateTimeClass, "date", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		d := args[0].Heap().(*value.LocalDateTimeObj).Date
		return value.NewLocalDate(d.Year, d.Month, d.Day), nil
	})
	defineMethod(dateTimeClass, "time", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		t := args[0].Heap().(*value.LocalDateTimeObj).Time
		return value.NewLocalTime(t.Hour, t.Minute, t.Second, t.Nano), nil
	})
	defineMethod(dateTimeClass, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})

	instantClass.Factory = &NativeFn{FnName: "Instant", FnArity: 0, Fn: func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewInstant(time.Now().UnixNano()), nil
	}}
	defineMethod(instantClass, "epochNano", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		n := args[0].Heap().(*value.InstantObj).EpochNano
		if n > 0x7fffffff || n < -0x80000000 {
			return value.Float64(float64(n)), nil
		}
		return value.Int32(int32(n)), nil
	})
	defineMethod(instantClass, "compare", 1, func(vm *VM, args []value.Value) (value.Value, error) {
		a := args[0].Heap().(*value.InstantObj)
		b, ok := args[1].Heap().(*value.InstantObj)
		if !ok {
			return value.Value{}, value.NewError(value.ErrType, "cannot compare Instant to %s", args[1].TypeName())
		}
		switch {
		case a.EpochNano < b.EpochNano:
			return value.Int32(-1), nil
		case a.EpochNano > b.EpochNano:
			return value.Int32(1), nil
		default:
			return value.Int32(0), nil
		}
	})
	defineMethod(instantClass, "toString", 0, func(vm *VM, args []value.Value) (value.Value, error) {
		return value.NewString(value.Display(args[0])), nil
	})
}

func compareDate(a, b *value.LocalDateObj) int {
	switch {
	case a.Year != b.Year:
		return sign(a.Year - b.Year)
	case a.Month != b.Month:
		return sign(a.Month - b.Month)
	default:
		return sign(a.Day - b.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
