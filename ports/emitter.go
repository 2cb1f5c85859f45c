package ports

import (
	"planforge/domain/contract"
	"planforge/domain/run"
	"planforge/domain/validation"
)

// ContractEmitter writes validated contracts and the generation manifest.
// EmitContract must refuse any contract whose report is invalid and return
// the written filename on success.
type ContractEmitter interface {
	EmitContract(doc *contract.GeneratedContract, report *validation.Report) (string, error)
	EmitManifest(m *run.Manifest) (string, error)
}
