package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// Auditor ejecuta la auditoría de consistencia; businessID vacío = todos los negocios.
type Auditor interface {
	Run(ctx context.Context, businessID string) (*dto.AuditReport, error)
}

// Scheduler programa la auditoría periódica de inventario y préstamos.
type Scheduler struct {
	cron    *cron.Cron
	auditor Auditor
	spec    string
	timeout time.Duration
	log     *logger.Logger
}

// New crea el scheduler. spec es una expresión cron estándar de 5 campos.
func New(spec string, auditor Auditor, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(),
		auditor: auditor,
		spec:    spec,
		timeout: 2 * time.Minute,
		log:     log.Component("scheduler"),
	}
}

// Start registra el job y arranca el cron. Con spec vacío no programa nada.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.log.Info().Msg("auditoría programada deshabilitada")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.runAudit); err != nil {
		return err
	}
	s.log.Info().Str("cron", s.spec).Msg("iniciando scheduler")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine el job en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler detenido")
}

func (s *Scheduler) runAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.auditor.Run(ctx, "")
	if err != nil {
		s.log.Error().Err(err).Msg("auditoría programada")
		return
	}
	if len(report.Violations) > 0 || len(report.OverdueLends) > 0 {
		s.log.Warn().Strs("violations", report.Violations).Strs("overdue_lends", report.OverdueLends).
			Msg("auditoría encontró registros a revisar")
	}
}
