package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, userID, typ, message string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO notifications(id, user_id, type, message)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), userID, typ, message,
	)
	return err
}
