package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"drinkpass/internal/domain"
)

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, birth_date, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.BirthDate,
		user.PasswordHash,
		user.CreatedAt,
	)
	return err
}

const userSelect = `
	SELECT u.id, u.email, u.display_name, u.birth_date, u.password_hash,
	       u.otp_request_id, u.otp_code_hash, u.otp_expires_at, u.created_at,
	       p.id, p.name, p.status, p.renews_at, p.started_at
	FROM users u
	LEFT JOIN plans p ON p.user_id = u.id AND p.status = 'active'
`

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, userSelect+" WHERE u.id = $1", id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, userSelect+" WHERE u.email = $1", email)
}

func (r *PgUserRepository) getOne(ctx context.Context, query, arg string) (domain.User, error) {
	var (
		u             domain.User
		otpRequestID  *string
		otpCodeHash   *string
		planID        *string
		planName      *string
		planStatus    *string
		planRenewsAt  *time.Time
		planStartedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.BirthDate,
		&u.PasswordHash,
		&otpRequestID,
		&otpCodeHash,
		&u.OtpExpiresAt,
		&u.CreatedAt,
		&planID,
		&planName,
		&planStatus,
		&planRenewsAt,
		&planStartedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if otpRequestID != nil {
		u.OtpRequestID = *otpRequestID
	}
	if otpCodeHash != nil {
		u.OtpCodeHash = *otpCodeHash
	}
	if planID != nil {
		plan := domain.Plan{ID: *planID}
		if planName != nil {
			plan.Name = *planName
		}
		if planStatus != nil {
			plan.Status = *planStatus
		}
		plan.RenewsAt = planRenewsAt
		if planStartedAt != nil {
			plan.StartedAt = *planStartedAt
		}
		u.Plan = &plan
	}
	return u, nil
}

func (r *PgUserRepository) UpdateOTP(ctx context.Context, id, requestID, codeHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET otp_request_id = $2, otp_code_hash = $3, otp_expires_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, requestID, codeHash, expiresAt)
	return err
}

func (r *PgUserRepository) ClearOTP(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET otp_request_id = NULL, otp_code_hash = NULL, otp_expires_at = NULL
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
