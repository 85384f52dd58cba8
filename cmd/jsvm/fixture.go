package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/coreform/jsvm/core/value"
	"github.com/coreform/jsvm/core/vm"
)

// codeBlockFixture is the on-disk JSON shape of one vm.CodeBlock: the
// compiler CodeBlock.go's own doc comment calls "out of scope" for this
// core, loaded here instead of generated by a front end. Code is a raw
// byte string; encoding/json decodes a []byte field from base64
// automatically, which is the natural wire form for an opcode stream.
type codeBlockFixture struct {
	Name           string              `json:"name"`
	Code           []byte              `json:"code"`
	Constants      []constantFixture   `json:"constants"`
	SubBlocks      []*codeBlockFixture `json:"subBlocks"`
	Handlers       []handlerFixture    `json:"handlers"`
	NumLocals      int                 `json:"numLocals"`
	NumParams      int                 `json:"numParams"`
	NumUpvalues    int                 `json:"numUpvalues"`
	UpvalueSources []upvalueFixture    `json:"upvalueSources"`
	Flags          []string            `json:"flags"`
}

type constantFixture struct {
	Type string  `json:"type"` // undefined | null | boolean | number | string
	Bool bool    `json:"bool,omitempty"`
	Num  float64 `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
}

type handlerFixture struct {
	StartPC    int    `json:"startPC"`
	EndPC      int    `json:"endPC"`
	HandlerPC  int    `json:"handlerPC"`
	Kind       string `json:"kind"`
	StackDepth int    `json:"stackDepth"`
}

type upvalueFixture struct {
	FromParentLocal bool `json:"fromParentLocal"`
	Index           int  `json:"index"`
}

var handlerKinds = map[string]vm.HandlerKind{
	"catch":   vm.HandlerCatch,
	"finally": vm.HandlerFinally,
}

var codeBlockFlags = map[string]vm.CodeBlockFlags{
	"strict":            vm.FlagStrict,
	"generator":         vm.FlagGenerator,
	"async":             vm.FlagAsync,
	"arrow":             vm.FlagArrow,
	"derivedConstructor": vm.FlagDerivedConstructor,
}

// loadFixture reads a JSON CodeBlock fixture from path and converts it to
// a *vm.CodeBlock tree.
func loadFixture(path string) (*vm.CodeBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f codeBlockFixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return f.toCodeBlock()
}

func (f *codeBlockFixture) toCodeBlock() (*vm.CodeBlock, error) {
	constants := make([]value.Value, len(f.Constants))
	for i, c := range f.Constants {
		v, err := c.toValue()
		if err != nil {
			return nil, err
		}
		constants[i] = v
	}

	subBlocks := make([]*vm.CodeBlock, len(f.SubBlocks))
	for i, sb := range f.SubBlocks {
		cb, err := sb.toCodeBlock()
		if err != nil {
			return nil, err
		}
		subBlocks[i] = cb
	}

	handlers := make([]vm.ExceptionHandler, len(f.Handlers))
	for i, h := range f.Handlers {
		kind, ok := handlerKinds[h.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown handler kind %q", h.Kind)
		}
		handlers[i] = vm.ExceptionHandler{
			StartPC: h.StartPC, EndPC: h.EndPC, HandlerPC: h.HandlerPC,
			Kind: kind, StackDepth: h.StackDepth,
		}
	}

	upvalues := make([]vm.UpvalueSource, len(f.UpvalueSources))
	for i, u := range f.UpvalueSources {
		upvalues[i] = vm.UpvalueSource{FromParentLocal: u.FromParentLocal, Index: u.Index}
	}

	var flags vm.CodeBlockFlags
	for _, name := range f.Flags {
		bit, ok := codeBlockFlags[name]
		if !ok {
			return nil, fmt.Errorf("unknown code block flag %q", name)
		}
		flags |= bit
	}

	return &vm.CodeBlock{
		Name:           f.Name,
		Code:           f.Code,
		Constants:      constants,
		SubBlocks:      subBlocks,
		Handlers:       handlers,
		NumLocals:      f.NumLocals,
		NumParams:      f.NumParams,
		NumUpvalues:    f.NumUpvalues,
		UpvalueSources: upvalues,
		Flags:          flags,
	}, nil
}

func (c constantFixture) toValue() (value.Value, error) {
	switch c.Type {
	case "undefined", "":
		return value.UndefinedValue, nil
	case "null":
		return value.NullValue, nil
	case "boolean":
		return value.NewBool(c.Bool), nil
	case "number":
		return value.NewNumber(c.Num), nil
	case "string":
		return value.NewStringGo(c.Str), nil
	default:
		return value.UndefinedValue, fmt.Errorf("unknown constant type %q", c.Type)
	}
}
