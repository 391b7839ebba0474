package coerce

import (
	"fmt"
	"strings"
)

// Render turns a Value tree into a Python literal expression.
func Render(v Value) string {
	switch v.Kind {
	case Null:
		return "None"
	case Bool:
		if v.Bool {
			return "True"
		}
		return "False"
	case Num:
		return v.Num
	case Str:
		return quotePy(v.Str)
	case List:
		return "[" + joinItems(v.Items) + "]"
	case Tuple:
		if len(v.Items) == 0 {
			return "()"
		}
		if len(v.Items) == 1 {
			return "(" + Render(v.Items[0]) + ",)"
		}
		return "(" + joinItems(v.Items) + ")"
	case Set:
		// An empty set deliberately renders as {}; the MBPP+ dataset
		// substitutes an empty dict for empty sets (task Mbpp/115).
		if len(v.Items) == 0 {
			return "{}"
		}
		return "{" + joinItems(v.Items) + "}"
	case Dict:
		parts := make([]string, 0, len(v.Pairs))
		for _, p := range v.Pairs {
			parts = append(parts, Render(p.Key)+": "+Render(p.Val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case FloatOf:
		return "float(" + Render(v.Items[0]) + ")"
	case ComplexOf:
		return "complex(" + Render(v.Items[0]) + ")"
	}
	return "None"
}

func joinItems(items []Value) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, Render(it))
	}
	return strings.Join(parts, ", ")
}

// quotePy renders a single-quoted Python string literal.
func quotePy(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(fmt.Sprintf(`\x%02x`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}
