package contract

import (
	"fmt"
	"time"

	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/core"
)

// Assembler builds twelve-section contract documents from composed chains.
// One assembler serves a whole batch; every document it produces shares the
// batch timestamp and input hashes.
type Assembler struct {
	inputHashes catalog.InputHashes
	generatedAt core.Timestamp
}

// NewAssembler creates an assembler for one generation batch.
func NewAssembler(hashes catalog.InputHashes, now time.Time) *Assembler {
	return &Assembler{
		inputHashes: hashes,
		generatedAt: core.NewTimestamp(now.UTC()),
	}
}

// Assemble builds the contract for one (question, sector) pair. The
// contract number is the 1-based position in the 300-contract batch.
func (a *Assembler) Assemble(ch *chain.EpistemicChain, cls catalog.ContractClassification, sector core.PolicyAreaID, contractNumber int) (*GeneratedContract, error) {
	if ch.QuestionID != cls.QuestionID {
		return nil, fmt.Errorf("%w: chain is for %s, classification for %s",
			core.ErrAssemblyFailed, ch.QuestionID, cls.QuestionID)
	}

	identity, err := a.buildIdentity(ch, sector, contractNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssemblyFailed, err)
	}

	doc := &GeneratedContract{
		Identity:             identity,
		ExecutorBinding:      buildExecutorBinding(ch.QuestionID),
		MethodBinding:        buildMethodBinding(ch),
		QuestionContext:      buildQuestionContext(cls),
		SignalRequirements:   buildSignalRequirements(cls),
		EvidenceAssembly:     buildEvidenceAssembly(ch),
		FusionSpecification:  buildFusionSpecification(ch),
		CrossLayerFusion:     buildCrossLayerFusion(ch),
		HumanAnswerStructure: buildHumanAnswerStructure(ch.Type),
		Traceability:         buildTraceability(a.generatedAt),
		OutputContract:       buildOutputContract(),
		AuditAnnotations:     buildAuditAnnotations(ch, a.inputHashes, contractNumber, a.generatedAt),
	}

	// Post-construction re-check: formats and cardinalities must hold on
	// the finished document, not just on the inputs.
	if err := doc.Identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: identity re-validation: %v", core.ErrAssemblyFailed, err)
	}
	return doc, nil
}

func (a *Assembler) buildIdentity(ch *chain.EpistemicChain, sector core.PolicyAreaID, contractNumber int) (Identity, error) {
	contractID, err := core.NewContractID(contractNumber)
	if err != nil {
		return Identity{}, err
	}
	dimensionID, err := ch.QuestionID.DimensionID()
	if err != nil {
		return Identity{}, err
	}
	if _, err := core.ParsePolicyAreaID(string(sector)); err != nil {
		return Identity{}, err
	}

	return Identity{
		ContractID:          contractID,
		BaseSlot:            ch.QuestionID.BaseSlot(),
		QuestionID:          ch.QuestionID,
		DimensionID:         dimensionID,
		PolicyAreaID:        sector,
		ContractType:        ch.Type,
		ContractsServed:     []core.ContractID{contractID},
		PolicyAreaIDsServed: core.AllPolicyAreas(),
		SchemaVersion:       SchemaVersion,
		CreatedAt:           a.generatedAt,
	}, nil
}
