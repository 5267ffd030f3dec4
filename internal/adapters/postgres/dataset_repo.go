package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// DatasetRepo implements ports.DatasetRepository with pgx.
type DatasetRepo struct {
	db *DB
}

// NewDatasetRepo creates a new DatasetRepo.
func NewDatasetRepo(db *DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

// Upsert replaces a dataset and all of its features in one transaction.
func (r *DatasetRepo) Upsert(ctx context.Context, ds *domain.Dataset) error {
	rows, err := featureRows(ds)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO datasets (name, kind, marker, source, attributes, loaded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO UPDATE
			SET kind = EXCLUDED.kind, marker = EXCLUDED.marker, source = EXCLUDED.source,
			    attributes = EXCLUDED.attributes, loaded_at = EXCLUDED.loaded_at
		`, ds.Name, string(ds.Kind), ds.Marker, ds.Source, ds.Attributes, ds.LoadedAt)
		if err != nil {
			return fmt.Errorf("upsert dataset: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM features WHERE dataset_name = $1`, ds.Name); err != nil {
			return fmt.Errorf("clear features: %w", err)
		}

		batch := &pgx.Batch{}
		for i, row := range rows {
			batch.Queue(`
				INSERT INTO features (dataset_name, seq, feature_id, country, geom, keys, vals)
				VALUES ($1, $2, $3, $4, ST_GeomFromEWKB($5), $6, $7)
			`, ds.Name, i, row.id, row.country, row.geom, row.keys, row.vals)
		}
		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for range rows {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		return nil
	})
}

// GetByName returns a dataset with its features in stored order.
func (r *DatasetRepo) GetByName(ctx context.Context, name string) (*domain.Dataset, error) {
	var (
		ds   domain.Dataset
		kind string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT name, kind, marker, source, attributes, loaded_at
		FROM datasets WHERE name = $1
	`, name).Scan(&ds.Name, &kind, &ds.Marker, &ds.Source, &ds.Attributes, &ds.LoadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrDatasetNotFound)
	}
	if err != nil {
		return nil, err
	}
	ds.Kind = domain.DatasetKind(kind)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT feature_id, country, ST_AsEWKB(geom), keys, vals
		FROM features WHERE dataset_name = $1
		ORDER BY seq
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f    domain.Feature
			geom []byte
			vals []byte
		)
		if err := rows.Scan(&f.ID, &f.Country, &geom, &f.Keys, &vals); err != nil {
			return nil, err
		}
		if f.Location, err = DecodePoint(geom); err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		if f.Values, err = decodeValues(vals); err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		ds.Features = append(ds.Features, f)
	}
	return &ds, rows.Err()
}

// List returns every stored dataset with its feature count.
func (r *DatasetRepo) List(ctx context.Context) ([]domain.DatasetSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT d.name, d.kind, d.attributes, d.loaded_at, COUNT(f.seq)
		FROM datasets d
		LEFT JOIN features f ON f.dataset_name = d.name
		GROUP BY d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DatasetSummary
	for rows.Next() {
		var (
			s    domain.DatasetSummary
			kind string
		)
		if err := rows.Scan(&s.Name, &kind, &s.Attributes, &s.LoadedAt, &s.Features); err != nil {
			return nil, err
		}
		s.Kind = domain.DatasetKind(kind)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a dataset; features cascade.
func (r *DatasetRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM datasets WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, domain.ErrDatasetNotFound)
	}
	return nil
}

type featureRow struct {
	id, country string
	geom        []byte
	keys        []string
	vals        []byte
}

func featureRows(ds *domain.Dataset) ([]featureRow, error) {
	rows := make([]featureRow, len(ds.Features))
	for i := range ds.Features {
		f := &ds.Features[i]
		g, err := EncodePoint(f.Location)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		vals, err := encodeValues(f.Values)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		rows[i] = featureRow{id: f.ID, country: f.Country, geom: g, keys: f.Keys, vals: vals}
	}
	return rows, nil
}

// encodeValues stores present values only; absence is the missing key.
func encodeValues(values map[string]domain.Value) ([]byte, error) {
	m := make(map[string]float64, len(values))
	for k, v := range values {
		if v.Present {
			m[k] = v.Number
		}
	}
	return json.Marshal(m)
}

func decodeValues(data []byte) (map[string]domain.Value, error) {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	out := make(map[string]domain.Value, len(m))
	for k, v := range m {
		out[k] = domain.Num(v)
	}
	return out, nil
}
