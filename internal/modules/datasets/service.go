package datasets

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/chartpresets/internal/clients/datasetapi"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
	"github.com/rs/zerolog"
)

// Service answers sealed wire queries.
type Service struct {
	repo  *Repository
	codec *datasetapi.Codec
	log   zerolog.Logger
}

// NewService creates the reference dataset service.
func NewService(repo *Repository, codec *datasetapi.Codec, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		codec: codec,
		log:   log.With().Str("service", "datasets").Logger(),
	}
}

// Query opens a sealed wire query, runs it and seals the wire result table.
func (s *Service) Query(ctx context.Context, payload string) (string, error) {
	wire, err := s.codec.DecodeQuery(payload)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	table, err := s.Execute(wire)
	if err != nil {
		return "", err
	}
	return s.codec.EncodeTable(table)
}

// Execute runs a wire-vocabulary query and returns a wire-vocabulary table.
func (s *Service) Execute(wire *dataset.Query) (*dataset.Table, error) {
	q, err := fields.QueryToInternal(wire)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if q.DatasetType == "" {
		return nil, fmt.Errorf("%w: missing dataset type", ErrInvalidQuery)
	}

	rows, err := s.repo.Rows(q.DatasetType, tickerScope(q.FilterConditions))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s rows: %w", q.DatasetType, err)
	}
	columns, err := s.repo.Columns(q.DatasetType)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s columns: %w", q.DatasetType, err)
	}

	table, err := Execute(q, rows, columns)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("dataset", string(q.DatasetType)).
		Int("scanned", len(rows)).
		Int("returned", len(table.Rows)).
		Msg("Dataset query executed")

	return fields.TableToWire(table)
}

// tickerScope narrows the row scan using the query's ticker filter. The executor
// still applies the filter itself.
func tickerScope(conds []dataset.FilterCondition) []string {
	for _, c := range conds {
		if c.Field != fields.Ticker {
			continue
		}
		switch c.Operator {
		case dataset.OpEq, dataset.OpIn:
			out := make([]string, len(c.Values))
			for i, v := range c.Values {
				out[i] = strings.ToUpper(v)
			}
			return out
		}
	}
	return nil
}
