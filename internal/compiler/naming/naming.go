package naming

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ReservedPrefix starts names the compiler generates for itself.
const ReservedPrefix = "__"

// Check validates a declared identifier. It returns nil for names the
// language accepts and a description of the problem otherwise.
func Check(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if !norm.NFC.IsNormalString(name) {
		return fmt.Errorf("name %q is not in normalization form C (want %q)", name, Normalize(name))
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return fmt.Errorf("name %q uses the reserved prefix %q", name, ReservedPrefix)
	}
	if strings.Contains(name, "`") {
		return fmt.Errorf("name %q contains a backquote", name)
	}
	return nil
}

// Normalize returns the NFC form of name.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Qualify joins a module and a name: Qualify("math", "sin") → "math::sin".
// An empty module yields the bare name.
func Qualify(module, name string) string {
	if module == "" {
		return name
	}
	return module + "::" + name
}

// Split is the inverse of Qualify. A leading "::" roots the name in the
// current module and yields an empty module part.
func Split(qualified string) (module, name string) {
	i := strings.LastIndex(qualified, "::")
	if i < 0 {
		return "", qualified
	}
	return strings.TrimPrefix(qualified[:i], "::"), qualified[i+2:]
}

// Method builds the mangled name of a structure method: Foo`update
func Method(structure, name string) string {
	return structure + "`" + name
}
