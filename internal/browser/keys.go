package browser

import "github.com/go-rod/rod/lib/input"

// namedKeyInputs maps the §4.5 "I press the {keyname} key" vocabulary onto
// go-rod's input.Key values.
var namedKeyInputs = map[string]input.Key{
	"Enter":      input.Enter,
	"Tab":        input.Tab,
	"Escape":     input.Escape,
	"Backspace":  input.Backspace,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"Space":      input.Space,
	"Delete":     input.Delete,
	"Home":       input.Home,
	"End":        input.End,
	"PageUp":     input.PageUp,
	"PageDown":   input.PageDown,
}

func keyInput(name string) (input.Key, bool) {
	k, ok := namedKeyInputs[name]
	return k, ok
}
