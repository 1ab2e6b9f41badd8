package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"SJ_storefront_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type userRow struct {
	ID           int64           `db:"id"`
	Username     string          `db:"username"`
	Email        string          `db:"email"`
	MobileNumber string          `db:"mobile_number"`
	Password     string          `db:"password"`
	ReferralCode string          `db:"referral_code"`
	ReferrerID   *int64          `db:"referrer_id"`
	Wallet       decimal.Decimal `db:"wallet"`
	IsAdmin      bool            `db:"is_admin"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (u *userRow) toModel() *model.User {
	return &model.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		PasswordHash: u.Password,
		ReferralCode: u.ReferralCode,
		ReferrerID:   u.ReferrerID,
		Wallet:       u.Wallet,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		existsQuery, existsArgs, err := squirrel.
			Select("id").
			From("users").
			Where(squirrel.Or{
				squirrel.Eq{"email": user.Email},
				squirrel.Eq{"mobile_number": user.MobileNumber},
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user exists query: %w", err)
		}

		var existingID int64
		err = tx.GetContext(ctx, &existingID, existsQuery, existsArgs...)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		query, args, err := squirrel.
			Insert("users").
			SetMap(map[string]interface{}{
				"username":      user.Username,
				"email":         user.Email,
				"mobile_number": user.MobileNumber,
				"password":      user.PasswordHash,
				"referral_code": user.ReferralCode,
				"referrer_id":   user.ReferrerID,
				"wallet":        user.Wallet,
			}).
			Suffix("RETURNING id, created_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user insert query: %w", err)
		}

		row := tx.QueryRowxContext(ctx, query, args...)
		if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user userRow
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user userRow
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"email": email}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	var user userRow
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"referral_code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From("users").
		Where(squirrel.Eq{"referral_code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = r.db.GetContext(ctx, &one, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *Repository) UpdateUserProfile(ctx context.Context, id int64, update *model.ProfileUpdate) (*model.User, error) {
	query, args, err := squirrel.
		Update("users").
		Set("username", update.Username).
		Set("email", update.Email).
		Set("mobile_number", update.MobileNumber).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetUserByID(ctx, id)
}

// SetReferrer assigns a referrer to a user that never had one. The guard is
// the WHERE referrer_id IS NULL clause; re-parenting is not supported.
func (r *Repository) SetReferrer(ctx context.Context, userID, referrerID int64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var user userRow
		getQuery, getArgs, err := squirrel.
			Select("*").
			From("users").
			Where(squirrel.Eq{"id": userID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &user, getQuery, getArgs...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if user.ReferrerID != nil {
			return ErrAlreadyReferred
		}

		updateQuery, updateArgs, err := squirrel.
			Update("users").
			Set("referrer_id", referrerID).
			Where(squirrel.And{
				squirrel.Eq{"id": userID},
				squirrel.Eq{"referrer_id": nil},
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to set referrer: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyReferred
		}

		return nil
	})
}

// GetCompanyRoot returns the single true root of the referral forest: the
// lowest-id user without a referrer.
func (r *Repository) GetCompanyRoot(ctx context.Context) (*model.User, error) {
	var user userRow
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"referrer_id": nil}).
		OrderBy("id ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRootAccount
		}
		return nil, err
	}

	return user.toModel(), nil
}
