package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// RecordRepository reads and writes ticket records in the atendimentos table.
type RecordRepository struct {
	pool *pgxpool.Pool
	tx   *TransactionManager
}

var _ ports.RecordSource = (*RecordRepository)(nil)

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{
		pool: pool,
		tx:   NewTransactionManager(pool),
	}
}

const selectRecordsQuery = `
SELECT codigo_atendimento, cliente, descricao, atendente, prioridade, nota,
       data_solicitacao, tempo_inicio_hrs, tempo_resolucao_hrs
FROM atendimentos
ORDER BY data_solicitacao NULLS LAST, codigo_atendimento
`

const upsertRecordQuery = `
INSERT INTO atendimentos (
    codigo_atendimento, cliente, descricao, atendente, prioridade, nota,
    data_solicitacao, tempo_inicio_hrs, tempo_resolucao_hrs
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (codigo_atendimento) DO UPDATE SET
    cliente = EXCLUDED.cliente,
    descricao = EXCLUDED.descricao,
    atendente = EXCLUDED.atendente,
    prioridade = EXCLUDED.prioridade,
    nota = EXCLUDED.nota,
    data_solicitacao = EXCLUDED.data_solicitacao,
    tempo_inicio_hrs = EXCLUDED.tempo_inicio_hrs,
    tempo_resolucao_hrs = EXCLUDED.tempo_resolucao_hrs
`

type recordRow struct {
	Code            pgtype.Text
	Customer        pgtype.Text
	Description     pgtype.Text
	Agent           pgtype.Text
	Priority        pgtype.Text
	Rating          pgtype.Text
	RequestedAt     pgtype.Timestamp
	StartHours      pgtype.Float8
	ResolutionHours pgtype.Float8
}

// LoadRecords returns every stored ticket. Null columns are left out of the
// record so they read as missing.
func (r *RecordRepository) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, selectRecordsQuery)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(
			&row.Code,
			&row.Customer,
			&row.Description,
			&row.Agent,
			&row.Priority,
			&row.Rating,
			&row.RequestedAt,
			&row.StartHours,
			&row.ResolutionHours,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, mapRowToRecord(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// ImportRecords upserts records by ticket code in a single transaction and
// returns how many were written. Records without a ticket code are skipped.
func (r *RecordRepository) ImportRecords(ctx context.Context, records []domain.Record) (int, error) {
	batch := &pgx.Batch{}
	for _, rec := range records {
		if rec.Text(domain.FieldTicketCode) == "" {
			continue
		}
		row := mapRecordToRow(rec)
		batch.Queue(upsertRecordQuery,
			row.Code,
			row.Customer,
			row.Description,
			row.Agent,
			row.Priority,
			row.Rating,
			row.RequestedAt,
			row.StartHours,
			row.ResolutionHours,
		)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("upsert record %d: %w", i, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return batch.Len(), nil
}

func mapRowToRecord(row recordRow) domain.Record {
	rec := make(domain.Record, 9)
	putText(rec, domain.FieldTicketCode, row.Code)
	putText(rec, domain.FieldCustomer, row.Customer)
	putText(rec, domain.FieldDescription, row.Description)
	putText(rec, domain.FieldAgent, row.Agent)
	putText(rec, domain.FieldPriority, row.Priority)
	putText(rec, domain.FieldRating, row.Rating)
	if row.RequestedAt.Valid {
		rec[domain.FieldRequestedAt] = row.RequestedAt.Time
	}
	if row.StartHours.Valid {
		rec[domain.FieldStartHours] = row.StartHours.Float64
	}
	if row.ResolutionHours.Valid {
		rec[domain.FieldResolutionHours] = row.ResolutionHours.Float64
	}
	return rec
}

func mapRecordToRow(rec domain.Record) recordRow {
	row := recordRow{
		Code:        toText(rec, domain.FieldTicketCode),
		Customer:    toText(rec, domain.FieldCustomer),
		Description: toText(rec, domain.FieldDescription),
		Agent:       toText(rec, domain.FieldAgent),
		Priority:    toText(rec, domain.FieldPriority),
		Rating:      toText(rec, domain.FieldRating),
	}
	if t, ok := rec.Time(domain.FieldRequestedAt); ok {
		row.RequestedAt = pgtype.Timestamp{Time: t, Valid: true}
	}
	if v, ok := rec.Number(domain.FieldStartHours); ok {
		row.StartHours = pgtype.Float8{Float64: v, Valid: true}
	}
	if v, ok := rec.Number(domain.FieldResolutionHours); ok {
		row.ResolutionHours = pgtype.Float8{Float64: v, Valid: true}
	}
	return row
}

func putText(rec domain.Record, field string, v pgtype.Text) {
	if v.Valid {
		rec[field] = v.String
	}
}

func toText(rec domain.Record, field string) pgtype.Text {
	if !rec.Has(field) {
		return pgtype.Text{}
	}
	return pgtype.Text{String: rec.Text(field), Valid: true}
}
