package mono

import (
	"strings"

	"safec/internal/types"
)

// Mangle derives the C identifier of an instantiation:
//
//	Mangle("Wrapper", [int])               == "Wrapper_int"
//	Mangle("Box", [int*])                  == "Box_int_ptr"
//	Mangle("Box", [Pair<int, char>])       == "Box_Pair_int_char"
//	Mangle("Map", [unsigned int, char**])  == "Map_unsigned_int_char_ptr_ptr"
//
// With no arguments the base name is returned unchanged.
func Mangle(base string, args []types.Type) string {
	if len(args) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	for _, a := range args {
		sb.WriteByte('_')
		writeMangled(&sb, a)
	}
	return sb.String()
}

func writeMangled(sb *strings.Builder, t types.Type) {
	switch b := types.Base(t).(type) {
	case *types.Named:
		sb.WriteString(identPart(b.Name))
	case *types.Applied:
		sb.WriteString(identPart(b.Name))
		for _, a := range b.Args {
			sb.WriteByte('_')
			writeMangled(sb, a)
		}
	}
	for range types.PointerDepth(t) {
		sb.WriteString("_ptr")
	}
}

// identPart folds multi-word C names ("unsigned int", "struct Point") into
// one identifier fragment.
func identPart(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
