package common

const (
	ComponentNetwork      = "network"
	ComponentBlocksParser = "blocks-parser"
	ComponentGenerators   = "generators"
	ComponentRecordStore  = "record-store"
	ComponentHeight       = "height-source"
	ComponentCLI          = "cli"
)

var AllComponents = map[string]struct{}{
	ComponentNetwork:      {},
	ComponentBlocksParser: {},
	ComponentGenerators:   {},
	ComponentRecordStore:  {},
	ComponentHeight:       {},
	ComponentCLI:          {},
}
