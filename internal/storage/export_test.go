package storage

import "github.com/jackc/pgx/v5/pgxpool"

func PoolOf(r *PostgresRepository) *pgxpool.Pool { return r.pool }
