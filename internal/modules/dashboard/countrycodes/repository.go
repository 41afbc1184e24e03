package countrycodes

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"

	"github.com/cockroachdb/errors"

	"climatedash-server/internal/modules/dashboard/types"
)

//go:embed sql/list-country-codes.sql
var listCountryCodesSQL string

type Repository interface {
	List(ctx context.Context) ([]types.CountryCodeRow, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) List(ctx context.Context) ([]types.CountryCodeRow, error) {
	rows, err := r.db.QueryContext(ctx, listCountryCodesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list country codes")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close country code rows", "error", err)
		}
	}()

	var out []types.CountryCodeRow
	for rows.Next() {
		var c types.CountryCodeRow
		if err := rows.Scan(&c.Country, &c.ISOAlpha); err != nil {
			return nil, errors.Wrap(err, "scan country code")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "iterate country codes")
}
