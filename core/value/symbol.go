package value

import "fmt"

// Symbol is identity-valued: equal only to itself. The optional global
// registry key is recorded here but enforced by core/builtins' symbol
// registry (kept
// per-realm rather than process-global, per spec.md §9 "avoids process-wide
// singletons").
type Symbol struct {
	id          uint64
	description *string
	globalKey   *string
}

func NewSymbol(id uint64, description *string) *Symbol {
	return &Symbol{id: id, description: description}
}

func NewRegisteredSymbol(id uint64, key string) *Symbol {
	return &Symbol{id: id, description: &key, globalKey: &key}
}

func (s *Symbol) ID() uint64 { return s.id }

func (s *Symbol) Description() (string, bool) {
	if s.description == nil {
		return "", false
	}
	return *s.description, true
}

func (s *Symbol) GlobalKey() (string, bool) {
	if s.globalKey == nil {
		return "", false
	}
	return *s.globalKey, true
}

func (s *Symbol) String() string {
	desc := ""
	if s.description != nil {
		desc = *s.description
	}
	return fmt.Sprintf("Symbol(%s)", desc)
}
