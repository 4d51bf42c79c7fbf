// internal/conversation/postgres_store.go
package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"travel-assistant/internal/common/database"
	commonerrors "travel-assistant/internal/common/errors"
	"travel-assistant/internal/models"
)

// PostgresStore keeps trip messages in a single append-only table.
type PostgresStore struct {
	db *database.PostgresClient
}

func NewPostgresStore(db *database.PostgresClient) *PostgresStore {
	return &PostgresStore{db: db}
}

const appendMessageQuery = `
	INSERT INTO trip_messages (trip_id, user_id, role, content, provider_meta, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

const fetchMessagesQuery = `
	SELECT role, content, trip_id, user_id, provider_meta, created_at
	FROM trip_messages
	WHERE trip_id = $1
	ORDER BY created_at ASC, id ASC`

func (s *PostgresStore) Append(ctx context.Context, msg models.Message) error {
	var meta []byte
	if msg.ProviderMeta != nil {
		var err error
		meta, err = json.Marshal(msg.ProviderMeta)
		if err != nil {
			return fmt.Errorf("%w: marshal provider meta: %v", commonerrors.ErrHistoryAppendFailed, err)
		}
	}

	_, err := s.db.Exec(ctx, appendMessageQuery,
		msg.TripID, msg.UserID, msg.Role, msg.Content, nullableBytes(meta), msg.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: %v", commonerrors.ErrHistoryAppendFailed, err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, tripID string) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, fetchMessagesQuery, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", commonerrors.ErrHistoryFetchFailed, err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var tripID, userID sql.NullString
		var meta []byte

		if err := rows.Scan(&msg.Role, &msg.Content, &tripID, &userID, &meta, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", commonerrors.ErrHistoryFetchFailed, err)
		}
		msg.TripID = tripID.String
		msg.UserID = userID.String
		if len(meta) > 0 {
			var pm models.ProviderMeta
			if err := json.Unmarshal(meta, &pm); err == nil {
				msg.ProviderMeta = &pm
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", commonerrors.ErrHistoryFetchFailed, err)
	}

	return messages, nil
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
