//go:build js && wasm

package main

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/btouchard/dasfront/internal/compiler/dump"
	"github.com/btouchard/dasfront/internal/compiler/macro"
	"github.com/btouchard/dasfront/internal/compiler/parser"
)

func main() {
	js.Global().Set("parseDas", js.FuncOf(parseDasWrapper))

	// Keep the program alive
	select {}
}

// parseDasWrapper wraps parsing with panic recovery
func parseDasWrapper(this js.Value, args []js.Value) (result any) {
	defer func() {
		if r := recover(); r != nil {
			result = js.ValueOf(map[string]any{
				"tree":   "",
				"errors": []any{fmt.Sprintf("panic: %v", r)},
			})
		}
	}()

	if len(args) != 1 {
		return js.ValueOf(map[string]any{
			"tree":   "",
			"errors": []any{"expected 1 argument (source code)"},
		})
	}

	tree, errors := parseDas(args[0].String())
	jsErrors := make([]any, len(errors))
	for i, err := range errors {
		jsErrors[i] = err
	}
	return js.ValueOf(map[string]any{
		"tree":   tree,
		"errors": jsErrors,
	})
}

// parseDas parses a source string and returns the printed tree and the diagnostics
func parseDas(source string) (string, []string) {
	// %sql~...~ is available so the playground can show reader macros
	reg := macro.NewRegistry()
	reg.Register(macro.NewDelimited("sql", '~'))

	prog, diags := parser.ParseString("playground.das", source, parser.Options{Macros: reg})

	var errors []string
	for _, d := range diags {
		errors = append(errors, d.Error())
	}
	if len(prog.Requires) > 0 {
		var names []string
		for _, r := range prog.Requires {
			names = append(names, r.Module)
		}
		errors = append(errors,
			fmt.Sprintf("warning: require is not resolved in playground (%s)", strings.Join(names, ", ")))
	}
	return dump.Program(prog), errors
}
