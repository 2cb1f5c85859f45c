package registry

import (
	"testing"

	"planforge/domain/catalog"
	"planforge/domain/core"
	"planforge/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCompleteAssets(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())

	reg, err := NewLoader(nil).Load(dir)
	require.NoError(t, err)

	assert.Len(t, reg.Methods, 5)
	assert.Len(t, reg.Classifications, 30)
	assert.Len(t, reg.MethodSets, 30)
	assert.True(t, reg.InputHashes.Complete())

	ids := reg.QuestionIDs()
	require.Len(t, ids, 30)
	assert.Equal(t, core.QuestionID("D1_Q1"), ids[0])

	set, ok := reg.MethodSet("D3_Q2")
	require.True(t, ok)
	assert.Equal(t, 3, set.MethodCount())
	assert.Equal(t, catalog.PhaseA, set.PhaseAN1[0].Phase)
	assert.Equal(t, core.QuestionID("D3_Q2"), set.PhaseAN1[0].QuestionID)
}

func TestLoadHashesAreContentAddressed(t *testing.T) {
	dirA := testkit.WriteAssets(t, t.TempDir())
	dirB := testkit.WriteAssets(t, t.TempDir())

	regA, err := NewLoader(nil).Load(dirA)
	require.NoError(t, err)
	regB, err := NewLoader(nil).Load(dirB)
	require.NoError(t, err)

	assert.Equal(t, regA.InputHashes, regB.InputHashes,
		"identical content must hash identically regardless of location")
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader(nil).Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInputMissing)
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	testkit.CorruptAsset(t, dir, catalog.FileMethodSets)

	_, err := NewLoader(nil).Load(dir)
	assert.ErrorIs(t, err, core.ErrInputMalformed)
}

func TestLoadMissingTopLevelKey(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	testkit.OverwriteAsset(t, dir, catalog.FileClassifiedMethods, map[string]interface{}{
		"version": "4.0.0",
	})

	_, err := NewLoader(nil).Load(dir)
	assert.ErrorIs(t, err, core.ErrInputMalformed)
}

func TestLoadMissingLevel(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.ClassifiedMethodsDoc()
	levels := doc["methods_by_level"].(map[string]interface{})
	delete(levels, "N4-SYNTH")
	testkit.OverwriteAsset(t, dir, catalog.FileClassifiedMethods, doc)

	_, err := NewLoader(nil).Load(dir)
	require.ErrorIs(t, err, core.ErrRegistryIncomplete)
	assert.Contains(t, err.Error(), "N4")
}

func TestLoadWrongQuestionCount(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.ContractsDoc()
	contratos := doc["contratos"].(map[string]map[string]interface{})
	delete(contratos["D6"], "D6_Q5")
	testkit.OverwriteAsset(t, dir, catalog.FileContractClassifications, doc)

	_, err := NewLoader(nil).Load(dir)
	require.ErrorIs(t, err, core.ErrRegistryIncomplete)
	assert.Contains(t, err.Error(), "29")
}

func TestLoadMissingPhaseArray(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.MethodSetsDoc()
	sets := doc["method_sets"].(map[string]interface{})
	entry := sets["D1_Q1"].(map[string]interface{})
	delete(entry, "phase_b_N2")
	testkit.OverwriteAsset(t, dir, catalog.FileMethodSets, doc)

	_, err := NewLoader(nil).Load(dir)
	require.ErrorIs(t, err, core.ErrInputMalformed)
	assert.Contains(t, err.Error(), "phase")
}

func TestLoadEmptyPhaseArrayIsAccepted(t *testing.T) {
	// Present-but-empty differs from absent: the loader accepts it and the
	// validator rejects the resulting contract later.
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.MethodSetsDoc()
	sets := doc["method_sets"].(map[string]interface{})
	entry := sets["D1_Q1"].(map[string]interface{})
	entry["phase_b_N2"] = []map[string]string{}
	testkit.OverwriteAsset(t, dir, catalog.FileMethodSets, doc)

	reg, err := NewLoader(nil).Load(dir)
	require.NoError(t, err)
	set, _ := reg.MethodSet("D1_Q1")
	assert.Empty(t, set.PhaseBN2)
	assert.NotNil(t, set.PhaseBN2)
}

func TestLoadUnresolvableMethodRef(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.MethodSetsDoc()
	sets := doc["method_sets"].(map[string]interface{})
	entry := sets["D2_Q4"].(map[string]interface{})
	entry["phase_a_N1"] = []map[string]string{{"class": "GhostClass", "method": "vanish"}}
	testkit.OverwriteAsset(t, dir, catalog.FileMethodSets, doc)

	_, err := NewLoader(nil).Load(dir)
	require.ErrorIs(t, err, core.ErrMethodNotFound)
	assert.Contains(t, err.Error(), "GhostClass.vanish")
}

func TestLoadAggregatesCoherenceViolations(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.MethodSetsDoc()
	sets := doc["method_sets"].(map[string]interface{})

	// Two questions misfile their N3 method into phase_a_N1; both must be
	// itemized in one aggregated error.
	n3 := testkit.MethodN3()
	for _, q := range []string{"D1_Q1", "D5_Q3"} {
		entry := sets[q].(map[string]interface{})
		entry["phase_a_N1"] = []map[string]string{{"class": n3.Class, "method": n3.Method}}
	}
	testkit.OverwriteAsset(t, dir, catalog.FileMethodSets, doc)

	_, err := NewLoader(nil).Load(dir)
	require.ErrorIs(t, err, core.ErrCoherenceViolation)
	assert.Contains(t, err.Error(), "2 violation(s)")
	assert.Contains(t, err.Error(), "D1_Q1")
	assert.Contains(t, err.Error(), "D5_Q3")
}

func TestLoadRejectsUnknownContractType(t *testing.T) {
	dir := testkit.WriteAssets(t, t.TempDir())
	doc := testkit.ContractsDoc()
	contratos := doc["contratos"].(map[string]map[string]interface{})
	entry := contratos["D1"]["D1_Q1"].(map[string]interface{})
	entry["type"] = "TYPE_Z"
	testkit.OverwriteAsset(t, dir, catalog.FileContractClassifications, doc)

	_, err := NewLoader(nil).Load(dir)
	assert.ErrorIs(t, err, core.ErrUnknownContractType)
}
