package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/lkral/courier/internal/domain"
	"github.com/lkral/courier/internal/repository"
)

// timeFormat is how timestamps are stored (SQLite has no native type).
const timeFormat = time.RFC3339Nano

// messageRepository implements repository.MessageRepository for SQLite.
type messageRepository struct {
	db  *DB
	now func() time.Time
}

// NewMessageRepository creates a new SQLite message repository.
func NewMessageRepository(db *DB) repository.MessageRepository {
	return &messageRepository{db: db, now: time.Now}
}

// Create inserts the message. The creation date comes from the store
// clock, never from the caller, and the generated id is written back.
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	createdAt := r.now().UTC()

	query := `
		INSERT INTO messages (from_id, to_id, text, creation_date)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		msg.FromID,
		msg.ToID,
		msg.Text,
		createdAt.Format(timeFormat),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: message from %d to %d references a nonexistent user",
				domain.ErrIntegrityViolation, msg.FromID, msg.ToID)
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}

	msg.ID = id
	msg.CreationDate = createdAt
	return nil
}

// ListByRecipient returns every message addressed to userID, ordered by
// id ascending.
func (r *messageRepository) ListByRecipient(ctx context.Context, userID int64) ([]*domain.Message, error) {
	query := `
		SELECT id, from_id, to_id, text, creation_date
		FROM messages
		WHERE to_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		msg := &domain.Message{}
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.FromID, &msg.ToID, &msg.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.CreationDate, _ = time.Parse(timeFormat, createdAt)
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return msgs, nil
}

var _ repository.MessageRepository = (*messageRepository)(nil)
