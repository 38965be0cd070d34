package services_test

import (
	"io"
	"log/slog"
	"sync"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manualScheduler collects tasks so tests decide when, and in which order,
// recomputes complete.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (m *manualScheduler) Schedule(task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

func (m *manualScheduler) Shutdown() {}

func (m *manualScheduler) run(i int) {
	m.mu.Lock()
	task := m.tasks[i]
	m.mu.Unlock()
	task()
}

func (m *manualScheduler) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func ticketRecords() []domain.Record {
	return []domain.Record{
		{"codigo_atendimento": "AT-1", "atendente": "Ana", "prioridade": "Alta", "nota": "Ótimo", "data_solicitacao": "2024-03-01 08:00:00", "tempo_inicio_hrs": 1.0, "tempo_resolucao_hrs": 4.0},
		{"codigo_atendimento": "AT-2", "atendente": "Ana", "prioridade": "Baixa", "nota": "Bom", "data_solicitacao": "2024-03-02 14:00:00", "tempo_inicio_hrs": 2.0, "tempo_resolucao_hrs": 12.0},
		{"codigo_atendimento": "AT-3", "atendente": "Bruno", "prioridade": "Alta", "nota": "Ruim", "data_solicitacao": "2024-03-03 10:15:00", "tempo_inicio_hrs": 5.0, "tempo_resolucao_hrs": 30.0},
		{"codigo_atendimento": "AT-4", "atendente": "Carla", "prioridade": "Média", "nota": "Bom", "data_solicitacao": "2024-04-10 09:00:00", "tempo_inicio_hrs": 0.5, "tempo_resolucao_hrs": 6.0},
	}
}
