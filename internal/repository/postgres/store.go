package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/njprem/fitcity-account-service/internal/domain"
	"github.com/njprem/fitcity-account-service/internal/repository/ports"
)

const defaultConnectTimeout = 10 * time.Second

// AccountStore routes lookups to the replica and mutations to the primary.
// Each call acquires its own connection and releases it before returning.
type AccountStore struct {
	primary        *sqlx.DB
	replica        *sqlx.DB
	connectTimeout time.Duration
	logger         *zap.Logger
}

var _ ports.AccountStore = (*AccountStore)(nil)

func NewAccountStore(primary, replica *sqlx.DB, connectTimeout time.Duration, logger *zap.Logger) *AccountStore {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountStore{
		primary:        primary,
		replica:        replica,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

func (s *AccountStore) GetUserByUsername(ctx context.Context, username string) (user *domain.User, err error) {
	err = s.onReplica(ctx, func(conn DBTX) error {
		user, err = NewUserRepo(conn).FindByUsername(ctx, username)
		return err
	})
	return user, err
}

func (s *AccountStore) GetUserByEmail(ctx context.Context, email string) (user *domain.User, err error) {
	err = s.onReplica(ctx, func(conn DBTX) error {
		user, err = NewUserRepo(conn).FindByEmail(ctx, email)
		return err
	})
	return user, err
}

func (s *AccountStore) GetUserByID(ctx context.Context, id int64) (user *domain.User, err error) {
	err = s.onReplica(ctx, func(conn DBTX) error {
		user, err = NewUserRepo(conn).FindByID(ctx, id)
		return err
	})
	return user, err
}

func (s *AccountStore) FindValidResetToken(ctx context.Context, token string, now time.Time) (reset *domain.ResetToken, err error) {
	err = s.onReplica(ctx, func(conn DBTX) error {
		reset, err = NewResetTokenRepo(conn).FindValid(ctx, token, now)
		return err
	})
	return reset, err
}

func (s *AccountStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.onPrimary(ctx, func(conn DBTX) error {
		return NewUserRepo(conn).UpdatePassword(ctx, id, passwordHash)
	})
}

func (s *AccountStore) CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) (reset *domain.ResetToken, err error) {
	err = s.onPrimary(ctx, func(conn DBTX) error {
		reset, err = NewResetTokenRepo(conn).Create(ctx, userID, token, expiresAt)
		return err
	})
	return reset, err
}

// WithinTx commits when fn returns nil. Any error or panic from fn rolls the
// transaction back first; a failed rollback is logged and fn's error wins.
func (s *AccountStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.AccountTx) error) (err error) {
	conn, err := s.acquire(ctx, s.primary, "primary")
	if err != nil {
		return err
	}
	defer s.release(conn, "primary")

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
		if err != nil {
			s.rollback(tx)
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = classify("commit transaction", cerr)
		}
	}()

	err = fn(ctx, &txScope{
		users:  NewUserRepo(tx),
		resets: NewResetTokenRepo(tx),
	})
	return err
}

func (s *AccountStore) onReplica(ctx context.Context, fn func(conn DBTX) error) error {
	return s.withConn(ctx, s.replica, "replica", fn)
}

func (s *AccountStore) onPrimary(ctx context.Context, fn func(conn DBTX) error) error {
	return s.withConn(ctx, s.primary, "primary", fn)
}

func (s *AccountStore) withConn(ctx context.Context, db *sqlx.DB, role string, fn func(conn DBTX) error) error {
	conn, err := s.acquire(ctx, db, role)
	if err != nil {
		return err
	}
	defer s.release(conn, role)
	return fn(conn)
}

// acquire bounds connection establishment by connectTimeout and pings the
// connection before handing it out.
func (s *AccountStore) acquire(ctx context.Context, db *sqlx.DB, role string) (*sqlx.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	conn, err := db.Connx(acquireCtx)
	if err != nil {
		s.logger.Error("store connection failed", zap.String("endpoint", role), zap.Error(err))
		return nil, classify("connect "+role, err)
	}
	if err := conn.PingContext(acquireCtx); err != nil {
		s.logger.Error("store connection ping failed", zap.String("endpoint", role), zap.Error(err))
		s.release(conn, role)
		return nil, classify("ping "+role, err)
	}
	return conn, nil
}

func (s *AccountStore) release(conn *sqlx.Conn, role string) {
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		s.logger.Warn("store connection release failed", zap.String("endpoint", role), zap.Error(err))
	}
}

func (s *AccountStore) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Error("transaction rollback failed", zap.Error(err))
	}
}

type txScope struct {
	users  *UserRepository
	resets *ResetTokenRepository
}

func (t *txScope) Users() ports.UserRepository {
	return t.users
}

func (t *txScope) ResetTokens() ports.ResetTokenRepository {
	return t.resets
}
