package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgStore struct {
	pool *pgxpool.Pool
	db   DBTX
	inTx bool
}

var _ Store = (*PgStore)(nil)

func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, db: pool}
}

func (s *PgStore) Users() UserRepository               { return &UserRepo{db: s.db} }
func (s *PgStore) Sessions() SessionRepository         { return &SessionRepo{db: s.db} }
func (s *PgStore) Brands() BrandRepository             { return &BrandRepo{db: s.db} }
func (s *PgStore) Clients() ClientRepository           { return &ClientRepo{db: s.db} }
func (s *PgStore) Transactions() TransactionRepository { return &TransactionRepo{db: s.db} }
func (s *PgStore) OTPs() OTPRepository                 { return &OTPRepo{db: s.db} }

func (s *PgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PgStore{pool: s.pool, db: tx, inTx: true})
	})
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const uniqueViolation = "23505"

func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// updateBuilder compiles a typed patch into a parameterized UPDATE.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) setRaw(expr string) {
	b.sets = append(b.sets, expr)
}

func (b *updateBuilder) empty() bool {
	return len(b.args) == 0
}

// build returns "UPDATE table SET ... WHERE <where>" where the where clause
// refers to the extra arguments as {1}, {2}, ... in order.
func (b *updateBuilder) build(table string, where string, whereArgs ...any) (string, []any) {
	args := append([]any{}, b.args...)
	for i, arg := range whereArgs {
		args = append(args, arg)
		where = strings.ReplaceAll(where, fmt.Sprintf("{%d}", i+1), fmt.Sprintf("$%d", len(args)))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(b.sets, ", "), where), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
