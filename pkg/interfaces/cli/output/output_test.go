package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/application/services"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/memory"
	fixtures "github.com/vsinha/acompreq/pkg/infrastructure/testing"
)

func scenarioResult(t *testing.T) *dto.RunResult {
	t.Helper()
	scenario := fixtures.BuildSiteScenario()

	requisitions := memory.NewRequisitionRepository(len(scenario.Lines))
	require.NoError(t, requisitions.LoadRawLines(scenario.Lines))
	assignments := memory.NewAssignmentRepository()
	require.NoError(t, assignments.LoadAssignments(scenario.Assignments))
	require.NoError(t, assignments.LoadAddresses(scenario.Addresses))

	result, err := services.NewTrackingService(requisitions, assignments, nil, nil).
		Run(context.Background(), services.RunRequest{Now: fixtures.ReferenceNow})
	require.NoError(t, err)
	return result
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()

	err := Generate(scenarioResult(t), Config{Format: "text", OutputDir: dir, Out: &buf})
	require.NoError(t, err)

	text := buf.String()
	assert.Contains(t, text, "2026-W42/2026-W43")
	assert.Contains(t, text, "Total de requisições: 4")
	assert.Contains(t, text, "Totalmente compradas: 1")
	assert.Contains(t, text, "Com pendências: 3")
	assert.Contains(t, text, "Cement")
	assert.Contains(t, text, "(sem endereço)")

	body, err := os.ReadFile(filepath.Join(dir, "digests", "ANA.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Requisição R1")
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(scenarioResult(t), Config{Format: "json", Out: &buf}))

	var decoded struct {
		Window struct {
			Label string `json:"label"`
		} `json:"window"`
		Aggregates []struct {
			RequisitionID string `json:"requisition_id"`
			Status        string `json:"status"`
		} `json:"aggregates"`
		Summary dto.Summary `json:"summary"`
		Digests map[string]struct {
			Address        string `json:"address"`
			AddressMissing bool   `json:"address_missing"`
			Subject        string `json:"subject"`
			Body           string `json:"body"`
			Fingerprint    string `json:"fingerprint"`
			Entries        []struct {
				RequisitionID  string   `json:"requisition_id"`
				PurchaseOrders []string `json:"purchase_orders"`
				PendingItems   []string `json:"pending_items"`
			} `json:"entries"`
		} `json:"digests"`
		Rejected []struct {
			Row    int    `json:"row"`
			Reason string `json:"reason"`
		} `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, buf.String(), `"weeks": [`)

	assert.Equal(t, "2026-W42/2026-W43", decoded.Window.Label)
	require.Len(t, decoded.Aggregates, 4)
	assert.Equal(t, "R1", decoded.Aggregates[1].RequisitionID)
	assert.Equal(t, "PENDING", decoded.Aggregates[1].Status)
	assert.Equal(t, 3, decoded.Summary.Pending)

	require.Len(t, decoded.Digests, 2)
	ana := decoded.Digests["ANA"]
	assert.Equal(t, "ana@example.com", ana.Address)
	assert.False(t, ana.AddressMissing)
	assert.Contains(t, ana.Subject, "ANA")
	assert.Contains(t, ana.Body, "Requisição R1")
	assert.Len(t, ana.Fingerprint, 64)
	require.Len(t, ana.Entries, 2)
	assert.Equal(t, "R1", ana.Entries[0].RequisitionID)
	assert.Equal(t, []string{"101"}, ana.Entries[0].PurchaseOrders)
	assert.Equal(t, []string{"Cement"}, ana.Entries[0].PendingItems)
	assert.True(t, decoded.Digests["BRUNO"].AddressMissing)

	require.Len(t, decoded.Rejected, 1)
	assert.Equal(t, 11, decoded.Rejected[0].Row)
	assert.Contains(t, decoded.Rejected[0].Reason, "requisition")
}

func TestGenerate_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(scenarioResult(t), Config{Format: "csv", Out: &buf}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "EMPRD,EMPRD_DESC,EMPRD_UF,REQ_CDG,REQ_DATA,QTD_INSUMOS,QTD_COMPRADOS,QTD_PENDENTE,STATUS,ADM", lines[0])
	assert.Equal(t, "S1,Obra Centro,SP,R1,2026-10-14,3,2,1,PENDING,ANA", lines[2])

	dir := t.TempDir()
	require.NoError(t, Generate(scenarioResult(t), Config{Format: "csv", OutputDir: dir, Out: &buf}))
	pending, err := os.ReadFile(filepath.Join(dir, "requisicoes_sem_of.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(pending), "\n"))
}

func TestGenerate_XLSX(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(scenarioResult(t), Config{Format: "xlsx", OutputDir: dir}))

	f, err := excelize.OpenFile(filepath.Join(dir, "acompreq_relatorio.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(requisitionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "REQ_CDG", rows[0][3])

	pending, err := f.GetRows(pendingSheet)
	require.NoError(t, err)
	assert.Len(t, pending, 4)

	assert.Error(t, Generate(scenarioResult(t), Config{Format: "xlsx"}))
}

func TestGenerate_UnknownFormat(t *testing.T) {
	assert.Error(t, Generate(&dto.RunResult{}, Config{Format: "pdf"}))
}

func TestDigestFilename(t *testing.T) {
	assert.Equal(t, "ANA_MARIA.txt", DigestFilename("ANA MARIA"))
	assert.Equal(t, "J_O.txt", DigestFilename("J/O"))
}
