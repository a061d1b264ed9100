// Package tasks contains the asynq background jobs: the periodic overdue
// sweep and reminder email delivery. The core store stays synchronous; only
// dunning runs out-of-band.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ivanblascoverdu/facturacion/internal/config"
	"github.com/ivanblascoverdu/facturacion/internal/email"
	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// Task types.
const (
	TypeInvoiceCheckOverdue = "billing:invoice:check_overdue"
	TypeReminderEmail       = "billing:invoice:reminder"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// ReminderTaskPayload identifies the invoice a reminder email is for.
type ReminderTaskPayload struct {
	InvoiceID string `json:"invoice_id"`
}

// NewReminderEmailTask builds a reminder delivery task for one invoice.
func NewReminderEmailTask(invoiceID utils.ShortID) (*asynq.Task, error) {
	payload, err := json.Marshal(ReminderTaskPayload{InvoiceID: invoiceID.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reminder payload: %w", err)
	}
	return asynq.NewTask(TypeReminderEmail, payload), nil
}

// NewCheckOverdueTask builds the periodic overdue sweep task.
func NewCheckOverdueTask() *asynq.Task {
	return asynq.NewTask(TypeInvoiceCheckOverdue, nil)
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	store          *store.Store
	billingService services.IBillingService
	emailSender    email.Sender
	taskClient     *asynq.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	st *store.Store,
	billingService services.IBillingService,
	emailSender email.Sender,
	taskClient *asynq.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		store:          st,
		billingService: billingService,
		emailSender:    emailSender,
		taskClient:     taskClient,
	}
}

// SetupServer configures an Asynq server and the mux with all billing task
// handlers registered. The caller runs the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInvoiceCheckOverdue, processor.HandleCheckOverdueTask)
	mux.HandleFunc(TypeReminderEmail, processor.HandleReminderEmailTask)

	return srv, mux
}

// StartOverdueScheduler enqueues the overdue sweep at a fixed interval until
// ctx is cancelled. One sweep is enqueued immediately on start.
func StartOverdueScheduler(ctx context.Context, client *asynq.Client, interval time.Duration) {
	enqueue := func() {
		if _, err := client.Enqueue(NewCheckOverdueTask()); err != nil {
			log.Printf("Failed to enqueue overdue check task: %v", err)
		}
	}
	enqueue()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

// --- Task Handlers ---

// HandleCheckOverdueTask sweeps the invoice collection: pending invoices past
// their due date are transitioned to overdue, and a reminder email is
// enqueued for every invoice that has crossed more reminder-day thresholds
// than reminders already sent.
func (p *TaskProcessor) HandleCheckOverdueTask(ctx context.Context, t *asynq.Task) error {
	now := time.Now()
	reminderDays := p.store.Clinic().ReminderDays

	for _, inv := range p.store.Invoices() {
		if inv.Status == models.InvoicePending && inv.DueDate.Before(now) {
			updated, err := p.billingService.UpdateInvoiceStatus(ctx, inv.ID, models.InvoiceOverdue)
			if err != nil {
				log.Printf("Failed to mark invoice %s overdue: %v", inv.Number, err)
				continue
			}
			inv = *updated
		}
		if inv.Status != models.InvoicePending && inv.Status != models.InvoiceOverdue {
			continue
		}
		if !inv.DueDate.Before(now) {
			continue
		}

		daysOverdue := int(now.Sub(inv.DueDate).Hours() / 24)
		thresholdsCrossed := 0
		for _, d := range reminderDays {
			if daysOverdue >= d {
				thresholdsCrossed++
			}
		}
		if inv.RemindersSent >= thresholdsCrossed {
			continue
		}

		task, err := NewReminderEmailTask(inv.ID)
		if err != nil {
			return err
		}
		if _, err := p.taskClient.Enqueue(task); err != nil {
			log.Printf("Failed to enqueue reminder for invoice %s: %v", inv.Number, err)
		}
	}
	return nil
}

// HandleReminderEmailTask delivers the dunning email, then records the
// reminder on the invoice. The counter only moves after a successful send, so
// a delivery failure retried by asynq cannot double count. Invoices paid or
// cancelled since enqueueing are skipped.
func (p *TaskProcessor) HandleReminderEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload ReminderTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal reminder task payload: %v: %w", err, asynq.SkipRetry)
	}
	invoiceID, err := utils.ParseShortID(payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("invalid invoice ID in reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	inv, err := p.store.FindInvoice(invoiceID)
	if err != nil {
		return fmt.Errorf("invoice %s vanished: %w", payload.InvoiceID, asynq.SkipRetry)
	}
	if inv.Status == models.InvoicePaid || inv.Status == models.InvoiceCancelled {
		log.Printf("Skipping reminder for invoice %s: status is %s", inv.Number, inv.Status)
		return nil
	}

	patient, err := p.store.FindPatient(inv.PatientID)
	if err != nil {
		return fmt.Errorf("patient for invoice %s: %v: %w", inv.Number, err, asynq.SkipRetry)
	}

	clinic := p.store.Clinic()
	subject := fmt.Sprintf("Recordatorio de pago: factura %s", inv.Number)
	body := fmt.Sprintf(
		"Hola %s,\r\n\r\nLe recordamos que la factura %s por %.2f€ venció el %s.\r\n"+
			"Este es el recordatorio número %d.\r\n\r\nUn saludo,\r\n%s",
		patient.Name, inv.Number, inv.Total, inv.DueDate.Format("02/01/2006"),
		inv.RemindersSent+1, clinic.Name,
	)
	rawMessage := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		p.cfg.SmtpFromAddress, patient.Email, subject, body,
	))

	if err := p.emailSender.Send(ctx, []string{patient.Email}, subject, rawMessage); err != nil {
		return fmt.Errorf("failed to send reminder for invoice %s: %w", inv.Number, err)
	}

	if _, err := p.billingService.SendReminder(ctx, invoiceID); err != nil {
		if errors.Is(err, store.ErrInvalidState) {
			log.Printf("Reminder for invoice %s delivered but not recorded: %v", inv.Number, err)
			return nil
		}
		return fmt.Errorf("failed to record reminder for invoice %s: %v: %w", inv.Number, err, asynq.SkipRetry)
	}
	return nil
}
