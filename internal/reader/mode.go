package reader

import "fmt"

type modeKind int

const (
	modeRaw modeKind = iota
	modeBaseBlock
	modeExplicitRoot
)

// ParseMode selects how much of the base block Open trusts.
type ParseMode struct {
	kind modeKind
	root uint32
}

var (
	// ParseRaw ignores the base block entirely. Only the bins are indexed,
	// which is enough for FindRootCellOffset.
	ParseRaw = ParseMode{kind: modeRaw}
	// ParseNormalWithBaseBlock takes the root offset from a validated base
	// block. A damaged base block can still be replaced by a log's copy.
	ParseNormalWithBaseBlock = ParseMode{kind: modeBaseBlock}
)

// ParseNormal uses root as the root cell offset regardless of the base
// block.
func ParseNormal(root uint32) ParseMode {
	return ParseMode{kind: modeExplicitRoot, root: root}
}

func (m ParseMode) String() string {
	switch m.kind {
	case modeRaw:
		return "raw"
	case modeBaseBlock:
		return "normal-with-base-block"
	default:
		return fmt.Sprintf("normal(root=0x%x)", m.root)
	}
}
