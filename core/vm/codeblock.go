package vm

import "github.com/coreform/jsvm/core/value"

// ExceptionHandler maps a PC range in a CodeBlock's Code to a handler PC,
// per spec.md §4.4: "on throw, the VM searches the handler table in the
// current frame". Ranges are half-open [StartPC, EndPC).
type ExceptionHandler struct {
	StartPC, EndPC int
	HandlerPC      int
	Kind           HandlerKind
	StackDepth     int // operand-stack depth to restore before jumping to HandlerPC
}

// CodeBlockFlags records compile-time facts Dispatch needs without
// re-deriving them from the opcode stream.
type CodeBlockFlags uint8

const (
	FlagStrict CodeBlockFlags = 1 << iota
	FlagGenerator
	FlagAsync
	FlagArrow
	FlagDerivedConstructor
)

func (f CodeBlockFlags) Strict() bool    { return f&FlagStrict != 0 }
func (f CodeBlockFlags) Generator() bool { return f&FlagGenerator != 0 }
func (f CodeBlockFlags) Async() bool     { return f&FlagAsync != 0 }
func (f CodeBlockFlags) Arrow() bool     { return f&FlagArrow != 0 }

// CodeBlock is the read-only record a compiler (out of scope; see
// cmd/jsvm's JSON-fixture loader) produces for one function body or the
// top-level script: a constant pool, an opcode stream, and the exception-
// handler table. CodeBlock never changes after construction, so a single
// instance is safely shared by every closure over it.
type CodeBlock struct {
	Name       string
	Code       []byte
	Constants  []value.Value
	SubBlocks  []*CodeBlock // inner function code blocks, indexed directly by MAKECLOSURE's operand
	Handlers   []ExceptionHandler
	NumLocals  int
	NumParams  int
	NumUpvalues int
	// UpvalueSources describes, for each upvalue slot, whether MAKECLOSURE
	// should capture it from the enclosing frame's locals (by index) or
	// from the enclosing frame's own upvalues (by index).
	UpvalueSources []UpvalueSource
	Flags          CodeBlockFlags
}

// UpvalueSource is one entry of a CodeBlock's closure-capture list.
type UpvalueSource struct {
	FromParentLocal bool
	Index           int
}
