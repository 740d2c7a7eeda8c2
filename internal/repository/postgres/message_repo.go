package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lkral/courier/internal/domain"
	"github.com/lkral/courier/internal/repository"
)

// messageRepository implements repository.MessageRepository.
type messageRepository struct {
	db  *DB
	now func() time.Time
}

// NewMessageRepository creates a new PostgreSQL message repository.
func NewMessageRepository(db *DB) repository.MessageRepository {
	return &messageRepository{db: db, now: time.Now}
}

// Create inserts the message. The creation date comes from the store
// clock, never from the caller, and the generated id is written back.
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	createdAt := r.now().UTC()

	query := `
		INSERT INTO messages (from_id, to_id, text, creation_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.Pool.QueryRow(ctx, query, msg.FromID, msg.ToID, msg.Text, createdAt).Scan(&id)
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
		WHERE to_id = $1
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		msg := &domain.Message{}
		if err := rows.Scan(&msg.ID, &msg.FromID, &msg.ToID, &msg.Text, &msg.CreationDate); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return msgs, nil
}

var _ repository.MessageRepository = (*messageRepository)(nil)
