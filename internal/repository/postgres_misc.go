package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"planora/internal/domain"
)

// PostgresMessagesRepo MessagesRepo implementation.
type PostgresMessagesRepo struct {
	db *sql.DB
}

func NewPostgresMessagesRepo(db *sql.DB) *PostgresMessagesRepo {
	return &PostgresMessagesRepo{db: db}
}

var _ MessagesRepo = (*PostgresMessagesRepo)(nil)

func (r *PostgresMessagesRepo) Create(ctx context.Context, msg *domain.CoupleMessage) (int64, error) {
	return createCoupleMessage(ctx, r.db, msg)
}

func createCoupleMessage(ctx context.Context, ex interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, msg *domain.CoupleMessage) (int64, error) {
	query := `
		INSERT INTO couple_messages (event_id, guest_id, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := ex.QueryRowContext(ctx, query, msg.EventID, msg.GuestID, msg.Body).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create couple message: %w", err)
	}
	return id, nil
}

func (r *PostgresMessagesRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.CoupleMessage, error) {
	query := `
		SELECT id, event_id, guest_id, body, created_at
		FROM couple_messages WHERE event_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list couple messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.CoupleMessage
	for rows.Next() {
		var m domain.CoupleMessage
		if err := rows.Scan(&m.ID, &m.EventID, &m.GuestID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan couple message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// PostgresTemplatesRepo TemplatesRepo implementation.
type PostgresTemplatesRepo struct {
	db *sql.DB
}

func NewPostgresTemplatesRepo(db *sql.DB) *PostgresTemplatesRepo {
	return &PostgresTemplatesRepo{db: db}
}

var _ TemplatesRepo = (*PostgresTemplatesRepo)(nil)

func (r *PostgresTemplatesRepo) Get(ctx context.Context, eventID int64, channel, name string) (*domain.MessageTemplate, error) {
	query := `
		SELECT id, event_id, channel, name, COALESCE(subject, ''), body
		FROM message_templates
		WHERE event_id = $1 AND channel = $2 AND name = $3
	`
	var t domain.MessageTemplate
	err := r.db.QueryRowContext(ctx, query, eventID, channel, name).Scan(
		&t.ID, &t.EventID, &t.Channel, &t.Name, &t.Subject, &t.Body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("template %s/%s: %w", channel, name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &t, nil
}

func (r *PostgresTemplatesRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.MessageTemplate, error) {
	query := `
		SELECT id, event_id, channel, name, COALESCE(subject, ''), body
		FROM message_templates WHERE event_id = $1 ORDER BY channel, name
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var list []*domain.MessageTemplate
	for rows.Next() {
		var t domain.MessageTemplate
		if err := rows.Scan(&t.ID, &t.EventID, &t.Channel, &t.Name, &t.Subject, &t.Body); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *PostgresTemplatesRepo) Upsert(ctx context.Context, tpl *domain.MessageTemplate) error {
	query := `
		INSERT INTO message_templates (event_id, channel, name, subject, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, channel, name)
		DO UPDATE SET subject = EXCLUDED.subject, body = EXCLUDED.body
	`
	if _, err := r.db.ExecContext(ctx, query, tpl.EventID, tpl.Channel, tpl.Name, tpl.Subject, tpl.Body); err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	return nil
}

func (r *PostgresTemplatesRepo) Delete(ctx context.Context, eventID, templateID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM message_templates WHERE id = $1 AND event_id = $2`, templateID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return requireRow(res, fmt.Sprintf("template %d", templateID))
}

// PostgresWizardRepo WizardRepo implementation.
type PostgresWizardRepo struct {
	db *sql.DB
}

func NewPostgresWizardRepo(db *sql.DB) *PostgresWizardRepo {
	return &PostgresWizardRepo{db: db}
}

var _ WizardRepo = (*PostgresWizardRepo)(nil)

func (r *PostgresWizardRepo) Get(ctx context.Context, eventID int64) (*domain.WizardState, error) {
	query := `
		SELECT event_id, current_step, COALESCE(completed_steps, '[]'::jsonb), updated_at
		FROM wizard_states WHERE event_id = $1
	`
	var s domain.WizardState
	var completed json.RawMessage
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&s.EventID, &s.CurrentStep, &completed, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("wizard state: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wizard state: %w", err)
	}
	s.CompletedSteps = completed
	return &s, nil
}

func (r *PostgresWizardRepo) Save(ctx context.Context, state *domain.WizardState) error {
	query := `
		INSERT INTO wizard_states (event_id, current_step, completed_steps, updated_at)
		VALUES ($1, $2, COALESCE($3, '[]'::jsonb), NOW())
		ON CONFLICT (event_id)
		DO UPDATE SET current_step = EXCLUDED.current_step,
		              completed_steps = EXCLUDED.completed_steps,
		              updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, state.EventID, state.CurrentStep, nullJSON(state.CompletedSteps)); err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

// PostgresOrganizersRepo OrganizersRepo implementation.
type PostgresOrganizersRepo struct {
	db *sql.DB
}

func NewPostgresOrganizersRepo(db *sql.DB) *PostgresOrganizersRepo {
	return &PostgresOrganizersRepo{db: db}
}

var _ OrganizersRepo = (*PostgresOrganizersRepo)(nil)

func (r *PostgresOrganizersRepo) GetByEmail(ctx context.Context, email string) (*domain.Organizer, error) {
	query := `SELECT id, email, COALESCE(name, ''), password_hash, created_at FROM organizers WHERE email = $1`
	var o domain.Organizer
	err := r.db.QueryRowContext(ctx, query, email).Scan(&o.ID, &o.Email, &o.Name, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("organizer: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	return &o, nil
}

func (r *PostgresOrganizersRepo) GetByID(ctx context.Context, organizerID int64) (*domain.Organizer, error) {
	query := `SELECT id, email, COALESCE(name, ''), password_hash, created_at FROM organizers WHERE id = $1`
	var o domain.Organizer
	err := r.db.QueryRowContext(ctx, query, organizerID).Scan(&o.ID, &o.Email, &o.Name, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("organizer %d: %w", organizerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	return &o, nil
}

func (r *PostgresOrganizersRepo) Create(ctx context.Context, org *domain.Organizer) (int64, error) {
	query := `INSERT INTO organizers (email, name, password_hash) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, org.Email, org.Name, org.PasswordHash).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create organizer: %w", err)
	}
	return id, nil
}

// PostgresNotificationsRepo NotificationsRepo implementation.
type PostgresNotificationsRepo struct {
	db *sql.DB
}

func NewPostgresNotificationsRepo(db *sql.DB) *PostgresNotificationsRepo {
	return &PostgresNotificationsRepo{db: db}
}

var _ NotificationsRepo = (*PostgresNotificationsRepo)(nil)

func (r *PostgresNotificationsRepo) Record(ctx context.Context, rec *domain.NotificationRecord) error {
	query := `
		INSERT INTO notification_records (event_id, guest_id, channel, template, status, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rec.EventID, rec.GuestID, rec.Channel, rec.Template, rec.Status, rec.Detail); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

const notificationColumns = `id, event_id, guest_id, channel, template, status, COALESCE(detail, ''), created_at`

func (r *PostgresNotificationsRepo) ListByGuest(ctx context.Context, eventID, guestID int64) ([]*domain.NotificationRecord, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notification_records WHERE event_id = $1 AND guest_id = $2 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, eventID, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *PostgresNotificationsRepo) ListByEvent(ctx context.Context, eventID int64, page, size int) ([]*domain.NotificationRecord, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification_records WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	query := `SELECT ` + notificationColumns + `
		FROM notification_records WHERE event_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, eventID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	list, err := scanNotifications(rows)
	return list, total, err
}

func scanNotifications(rows *sql.Rows) ([]*domain.NotificationRecord, error) {
	var list []*domain.NotificationRecord
	for rows.Next() {
		var n domain.NotificationRecord
		if err := rows.Scan(&n.ID, &n.EventID, &n.GuestID, &n.Channel, &n.Template, &n.Status, &n.Detail, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
