package verilog

import "strings"

// mangle rewrites dots, brackets, and path separators to "$". Enum
// labels of the form "TypeName::Label" are mangled by mangleEnumLabel
// instead, since "::" is two characters and must collapse to one "$",
// not two.
func mangle(name string) string {
	r := strings.NewReplacer(".", "$", "[", "$", "]", "$")
	return r.Replace(name)
}

// mangleEnumLabel mangles a "TypeName::Label" enum constant name to
// "TypeName$Label".
func mangleEnumLabel(typeName, label string) string {
	return mangle(typeName) + "$" + mangle(label)
}
