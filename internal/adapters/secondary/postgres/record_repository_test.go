package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRepository_ImportAndLoad(t *testing.T) {
	ctx := context.Background()
	resetTables(t)
	repo := NewRecordRepository(testPool)

	n, err := repo.ImportRecords(ctx, []domain.Record{
		{
			"codigo_atendimento":  "AT-2",
			"cliente":             "ACME",
			"atendente":           "Bruno",
			"prioridade":          "Alta",
			"nota":                "Bom",
			"data_solicitacao":    "2024-03-02 10:00:00",
			"tempo_inicio_hrs":    json.Number("1.5"),
			"tempo_resolucao_hrs": "12",
		},
		{
			"codigo_atendimento":  "AT-1",
			"atendente":           "Ana",
			"data_solicitacao":    "2024-03-01 08:30:00",
			"tempo_resolucao_hrs": "n/a",
		},
		{"cliente": "no code"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := repo.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "AT-1", first.Text(domain.FieldTicketCode))
	assert.False(t, first.Has(domain.FieldCustomer))
	assert.False(t, first.Has(domain.FieldResolutionHours))
	ts, ok := first.Time(domain.FieldRequestedAt)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), ts.UTC())

	second := records[1]
	assert.Equal(t, "ACME", second.Text(domain.FieldCustomer))
	v, ok := second.Number(domain.FieldResolutionHours)
	require.True(t, ok)
	assert.Equal(t, 12.0, v)
	v, ok = second.Number(domain.FieldStartHours)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)
}

func TestRecordRepository_ImportUpserts(t *testing.T) {
	ctx := context.Background()
	resetTables(t)
	repo := NewRecordRepository(testPool)

	_, err := repo.ImportRecords(ctx, []domain.Record{{"codigo_atendimento": "AT-9", "nota": "Ruim"}})
	require.NoError(t, err)
	_, err = repo.ImportRecords(ctx, []domain.Record{{"codigo_atendimento": "AT-9", "nota": "Ótimo"}})
	require.NoError(t, err)

	records, err := repo.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ótimo", records[0].Text(domain.FieldRating))
}

func TestRecordRepository_LoadEmpty(t *testing.T) {
	resetTables(t)
	repo := NewRecordRepository(testPool)

	records, err := repo.LoadRecords(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	resetTables(t)
	tm := NewTransactionManager(testPool)
	boom := errors.New("boom")

	err := tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := GetDBTX(ctx, testPool).Exec(ctx,
			"INSERT INTO atendimentos (codigo_atendimento) VALUES ('AT-X')")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := NewRecordRepository(testPool).LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
