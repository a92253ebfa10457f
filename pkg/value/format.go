package value

import (
	"strconv"
	"strings"
)

// Display renders a value the way user-facing output (print, string
// interpolation, StringBuilder) does. It does not consult any
// user-defined "toString"/"display" method; the VM layer is responsible
// for trying that first and falling back to Display.
func Display(v Value) string {
	switch v.tag {
	case TagNull:
		return "null"
	case TagUndefined:
		return "undefined"
	case TagBool:
		if v.b {
			return "true"
		}
		return "false"
	case TagInt32:
		return strconv.FormatInt(int64(v.i32), 10)
	case TagBigInt:
		return v.heap.(*BigIntObj).N.String()
	case TagFloat64:
		return formatFloat(v.f64)
	case TagString:
		return v.heap.(*StringObj).S
	case TagStringBuilder:
		return v.heap.(*StringBuilderObj).B.String()
	case TagArray:
		elems := v.heap.(*ArrayObj).Elems
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = reprOf(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TagObject:
		obj := v.heap.(*ObjectObj)
		parts := make([]string, 0, len(obj.keys))
		for _, k := range obj.keys {
			parts = append(parts, k+": "+reprOf(obj.props[k]))
		}
		name := "Object"
		if obj.Class != nil {
			name = obj.Class.Name
		}
		return name + "{" + strings.Join(parts, ", ") + "}"
	case TagClass:
		return "class " + v.heap.(*ClassObj).Name
	case TagRange:
		r := v.heap.(*RangeObj)
		op := ".."
		if r.Inclusive {
			op = "..="
		}
		return Display(r.From) + op + Display(r.To)
	case TagFunction:
		return "function " + v.heap.(*FunctionObj).Fn.Name()
	case TagBoundMethod:
		return "bound method " + v.heap.(*BoundMethodObj).Method.Name()
	case TagBuffer:
		return "Buffer(" + strconv.Itoa(v.heap.(*BufferObj).Buf.Size()) + " bytes)"
	case TagBufferBuilder:
		return "BufferBuilder(" + strconv.Itoa(v.heap.(*BufferBuilderObj).B.Len()) + " bytes)"
	case TagBufferReader:
		r := v.heap.(*BufferReaderObj).R
		return "BufferReader(@" + strconv.Itoa(r.Position()) + ")"
	case TagIterator:
		return "Iterator"
	case TagLocalDate:
		d := v.heap.(*LocalDateObj)
		return pad4(d.Year) + "-" + pad2(d.Month) + "-" + pad2(d.Day)
	case TagLocalTime:
		t := v.heap.(*LocalTimeObj)
		return pad2(t.Hour) + ":" + pad2(t.Minute) + ":" + pad2(t.Second)
	case TagLocalDateTime:
		dt := v.heap.(*LocalDateTimeObj)
		return Display(FromHeap(TagLocalDate, dt.Date)) + "T" + Display(FromHeap(TagLocalTime, dt.Time))
	case TagInstant:
		return strconv.FormatInt(v.heap.(*InstantObj).EpochNano, 10) + "ns"
	default:
		return "?"
	}
}

// reprOf renders strings with quotes when nested inside an array/object
// display, matching how most scripting-language REPLs distinguish a
// contained string from its bare display form.
func reprOf(v Value) string {
	if v.tag == TagString {
		return strconv.Quote(v.heap.(*StringObj).S)
	}
	return Display(v)
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func pad4(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
