package mav

// Kind is the closed set of node types the canonicalization stages reason
// about. Any type string outside the vocabulary maps to KindUnknown and is
// rendered as a generic node.
type Kind int

const (
	KindUnknown Kind = iota
	KindMemSys
	KindROMSys
	KindBank
	KindReplicate
	KindPort
	KindArbitration
	KindInstruction
	KindChannel
	KindPipe
	KindStream
	KindInterface
	KindBasicBlock
	KindFunction
	KindComponent
	KindKernel
	KindTask
	KindMemType
	KindMemGroup
	KindCSR
	KindModule
	KindResource
	KindCopies
)

var kindNames = [...]string{
	KindUnknown:     "unknown",
	KindMemSys:      "memsys",
	KindROMSys:      "romsys",
	KindBank:        "bank",
	KindReplicate:   "replicate",
	KindPort:        "port",
	KindArbitration: "arb",
	KindInstruction: "inst",
	KindChannel:     "channel",
	KindPipe:        "pipe",
	KindStream:      "stream",
	KindInterface:   "interface",
	KindBasicBlock:  "bb",
	KindFunction:    "function",
	KindComponent:   "component",
	KindKernel:      "kernel",
	KindTask:        "task",
	KindMemType:     "memtype",
	KindMemGroup:    "memgroup",
	KindCSR:         "csr",
	KindModule:      "module",
	KindResource:    "resource",
	KindCopies:      "copies",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if Kind(k) != KindUnknown {
			m[name] = Kind(k)
		}
	}
	return m
}()

// ParseKind maps a report type string to its Kind. The second result is
// false for types outside the vocabulary.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindByName[s]
	return k, ok
}

// String returns the report type string for k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// IsMemorySystem reports whether k is a RAM or ROM memory system.
func (k Kind) IsMemorySystem() bool {
	return k == KindMemSys || k == KindROMSys
}

// IsChannelLike reports whether k is a channel, pipe or stream endpoint.
func (k Kind) IsChannelLike() bool {
	return k == KindChannel || k == KindPipe || k == KindStream
}

// IsAccessor reports whether k issues memory accesses (instruction or
// interface). Accessors terminate port expansion in bank views.
func (k Kind) IsAccessor() bool {
	return k == KindInstruction || k == KindInterface
}

// IsFunctionLike reports whether k can be the target of a component focus.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunction, KindComponent, KindKernel, KindTask:
		return true
	}
	return false
}
