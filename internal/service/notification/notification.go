package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/pkg/observability"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Report summarises one dispatch. A recipient counts as failed when any of
// its channel attempts failed.
type Report struct {
	Kind             Kind
	SubjectID        uuid.UUID
	Recipients       int
	Sent             int
	Failed           int
	FailedRecipients []uuid.UUID
}

type attempt struct {
	channel     string
	destination string
	err         error
}

type delivery struct {
	recipientID uuid.UUID
	attempts    []attempt
}

func (d delivery) failed() bool {
	return lo.SomeBy(d.attempts, func(a attempt) bool { return a.err != nil })
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Dispatch resolves recipients, sends on every channel and logs each attempt.
	// It returns ErrNoRecipients when nobody qualifies.
	Dispatch(ctx context.Context, ev Event) (*Report, error)
	// Logs lists delivery log rows, newest first.
	Logs(ctx context.Context, filter repo.LogFilter) ([]*repo.NotificationLog, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type dispatcher struct {
	db          *repo.Client
	channels    []Channel
	maxParallel int
	sendTimeout time.Duration
	portalURL   string
	outcome     observability.Outcome
}

func New(db *repo.Client, channels []Channel, cfg *config.Config) Service {
	n := cfg.Notification.MaxParallel
	if n <= 0 {
		n = 1
	}
	timeout := time.Duration(cfg.Notification.SendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &dispatcher{
		db:          db,
		channels:    channels,
		maxParallel: n,
		sendTimeout: timeout,
		portalURL:   cfg.PortalURL(),
		outcome:     observability.NewOutcome("portal_notification_deliveries", "Notification deliveries by kind, channel and status"),
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, ev Event) (*Report, error) {
	ctx, span := observability.StartSpan(ctx, "notification.Dispatch",
		attribute.String("notification.kind", string(ev.Kind)),
		attribute.String("notification.subject_id", ev.SubjectID.String()),
	)
	defer span.End()

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if len(d.channels) == 0 {
		return nil, ErrNoChannels
	}

	content, owner, err := d.render(ctx, ev)
	if err != nil {
		return nil, err
	}

	recipients, err := d.recipients(ctx, ev, owner)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		slog.InfoContext(ctx, "dispatch: no recipients", "kind", ev.Kind, "subject_id", ev.SubjectID)
		return nil, ErrNoRecipients
	}

	p := pool.NewWithResults[delivery]().WithMaxGoroutines(d.maxParallel)
	for _, r := range recipients {
		p.Go(func() delivery { return d.deliver(ctx, r, content) })
	}
	deliveries := p.Wait()

	failed := lo.Filter(deliveries, func(dl delivery, _ int) bool { return dl.failed() })
	report := &Report{
		Kind:       ev.Kind,
		SubjectID:  ev.SubjectID,
		Recipients: len(deliveries),
		Failed:     len(failed),
		Sent:       len(deliveries) - len(failed),
		FailedRecipients: lo.Map(failed, func(dl delivery, _ int) uuid.UUID {
			return dl.recipientID
		}),
	}

	slog.InfoContext(ctx, "dispatch: done",
		"kind", ev.Kind,
		"subject_id", ev.SubjectID,
		"recipients", report.Recipients,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

// deliver tries every channel for r. Failures stay inside the returned delivery.
func (d *dispatcher) deliver(ctx context.Context, r Recipient, content Content) delivery {
	out := delivery{recipientID: r.PatientID}

	for _, ch := range d.channels {
		dest, ok := ch.Destination(r)
		if !ok {
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := ch.Send(sendCtx, r, content)
		cancel()
		if err != nil {
			err = &DeliveryError{RecipientID: r.PatientID, Channel: ch.Name(), Err: err}
			slog.WarnContext(ctx, "dispatch: send failed",
				"kind", content.Kind,
				"recipient_id", r.PatientID,
				"channel", ch.Name(),
				"err", err,
			)
		}

		out.attempts = append(out.attempts, attempt{channel: ch.Name(), destination: dest, err: err})
		d.record(ctx, content, r.PatientID, ch.Name(), dest, err)
	}

	if len(out.attempts) == 0 {
		// Nothing was sent, but the failure is still logged once per channel.
		slog.WarnContext(ctx, "dispatch: recipient unreachable on every channel", "recipient_id", r.PatientID)
		for _, ch := range d.channels {
			err := &DeliveryError{RecipientID: r.PatientID, Channel: ch.Name(), Err: ErrNoDestination}
			out.attempts = append(out.attempts, attempt{channel: ch.Name(), err: err})
			d.record(ctx, content, r.PatientID, ch.Name(), "", err)
		}
	}
	return out
}

// record writes the log row for one attempt. The row is written even when the
// caller's context is already done.
func (d *dispatcher) record(ctx context.Context, content Content, recipientID uuid.UUID, channel, dest string, sendErr error) {
	status := repo.NotificationStatusSent
	var msg *string
	if sendErr != nil {
		status = repo.NotificationStatusFailed
		m := sendErr.Error()
		msg = &m
	}

	d.outcome.Add(ctx, status,
		attribute.String("kind", string(content.Kind)),
		attribute.String("channel", channel),
	)

	_, err := d.db.NotificationLogs.Create(context.WithoutCancel(ctx), repo.CreateNotificationLog{
		EventKind:    string(content.Kind),
		SubjectID:    content.SubjectID,
		RecipientID:  recipientID,
		Channel:      channel,
		Destination:  dest,
		Status:       status,
		ErrorMessage: msg,
		CreatedAt:    repo.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "dispatch: write notification log",
			"recipient_id", recipientID,
			"channel", channel,
			"status", status,
			"err", err,
		)
	}
}

// render loads the subject and returns its content and owning patient
// (uuid.Nil for broadcasts).
func (d *dispatcher) render(ctx context.Context, ev Event) (Content, uuid.UUID, error) {
	c := Content{Kind: ev.Kind, SubjectID: ev.SubjectID, PortalURL: d.portalURL}

	var (
		owner uuid.UUID
		err   error
	)
	switch ev.Kind {
	case KindDocumentPublished:
		var e *repo.Exam
		if e, err = d.db.Exams.Get(ctx, ev.SubjectID); err == nil {
			c.Title, owner = e.Title, e.PatientID
		}
	case KindRecommendationPublished:
		var r *repo.Recommendation
		if r, err = d.db.Recommendations.Get(ctx, ev.SubjectID); err == nil {
			c.Title, owner = r.Title, r.PatientID
		}
	case KindNewsPublished:
		var n *repo.News
		if n, err = d.db.News.Get(ctx, ev.SubjectID); err == nil {
			c.Title = n.Title
		}
	}
	if err != nil {
		if repo.IsNotFound(err) {
			return c, uuid.Nil, fmt.Errorf("%w: %s %s", ErrSubjectNotFound, ev.Kind, ev.SubjectID)
		}
		return c, uuid.Nil, fmt.Errorf("load subject: %w", err)
	}

	if !ev.Kind.Broadcast() && owner != *ev.PatientID {
		return c, uuid.Nil, ErrSubjectMismatch
	}
	return c, owner, nil
}

func (d *dispatcher) recipients(ctx context.Context, ev Event, owner uuid.UUID) ([]Recipient, error) {
	if ev.Kind.Broadcast() {
		patients, err := d.db.Patients.ListNewsRecipients(ctx)
		if err != nil {
			return nil, fmt.Errorf("list news recipients: %w", err)
		}
		return lo.Map(patients, func(p *repo.Patient, _ int) Recipient { return toRecipient(p) }), nil
	}

	p, err := d.db.Patients.Get(ctx, owner)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	return []Recipient{toRecipient(p)}, nil
}

func (d *dispatcher) Logs(ctx context.Context, filter repo.LogFilter) ([]*repo.NotificationLog, error) {
	return d.db.NotificationLogs.List(ctx, filter)
}

func toRecipient(p *repo.Patient) Recipient {
	return Recipient{PatientID: p.ID, Name: p.DisplayName, Email: p.Email, Phone: p.Phone}
}
