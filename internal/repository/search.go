package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
	"github.com/handrades/Luppa-PLC-sub003/internal/service"
)

const searchColumns = `plc_id::text, equipment_id::text, cell_id::text, site_id::text,
	tag, description, make, model,
	COALESCE(ip_address, ''), COALESCE(firmware_version, ''),
	site_name, cell_name, equipment_name`

const headlineOptions = "StartSel=<mark>, StopSel=</mark>, HighlightAll=true"

// SearchRepository queries the plc_search_view materialized view. User text is
// only ever passed as a bound parameter.
type SearchRepository struct {
	db dbtx
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: pool}
}

func NewSearchRepositoryWithTx(tx pgx.Tx) *SearchRepository {
	return &SearchRepository{db: tx}
}

// SearchFullText ranks rows matching a prefix tsquery. Headline fragments are
// generated only when q.Headlines is set.
func (r *SearchRepository) SearchFullText(ctx context.Context, q service.FullTextQuery) ([]domain.SearchResultRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+searchColumns+`,
			ts_rank(v.search_vector, q.query)::float8 AS score,
			CASE WHEN $3 THEN ts_headline('english', v.tag, q.query, $4) END,
			CASE WHEN $3 THEN ts_headline('english', v.description, q.query, $4) END,
			CASE WHEN $3 THEN ts_headline('english', v.make, q.query, $4) END,
			CASE WHEN $3 THEN ts_headline('english', v.model, q.query, $4) END
		 FROM plc_search_view v, to_tsquery('english', $1) AS q(query)
		 WHERE v.search_vector @@ q.query
		 ORDER BY score DESC, v.tag, v.plc_id
		 LIMIT $2`,
		q.Expression, q.Limit, q.Headlines, headlineOptions,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SearchResultRow
	for rows.Next() {
		var row domain.SearchResultRow
		var tag, description, mk, model *string
		dest := append(rowDest(&row), &row.RelevanceScore, &tag, &description, &mk, &model)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		finishRow(&row)
		row.HighlightedFields = headlines(map[string]*string{
			domain.FieldTag:         tag,
			domain.FieldDescription: description,
			domain.FieldMake:        mk,
			domain.FieldModel:       model,
		})
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchSimilarity ranks rows by trigram word similarity. Substring matches
// are included so very short queries still find exact fragments.
func (r *SearchRepository) SearchSimilarity(ctx context.Context, q service.SimilarityQuery) ([]domain.SearchResultRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+searchColumns+`,
			word_similarity(lower($1::text), v.search_text)::float8 AS score
		 FROM plc_search_view v
		 WHERE lower($1::text) <% v.search_text OR strpos(v.search_text, lower($1::text)) > 0
		 ORDER BY score DESC, v.tag, v.plc_id
		 LIMIT $2`,
		q.Text, q.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SearchResultRow
	for rows.Next() {
		var row domain.SearchResultRow
		if err := rows.Scan(append(rowDest(&row), &row.RelevanceScore)...); err != nil {
			return nil, err
		}
		finishRow(&row)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// RefreshSearchView rebuilds the view without blocking readers.
func (r *SearchRepository) RefreshSearchView(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY plc_search_view`)
	return err
}

func rowDest(row *domain.SearchResultRow) []any {
	return []any{
		&row.PLCID, &row.EquipmentID, &row.CellID, &row.SiteID,
		&row.Tag, &row.Description, &row.Make, &row.Model,
		&row.IPAddress, &row.FirmwareVersion,
		&row.SiteName, &row.CellName, &row.EquipmentName,
	}
}

func finishRow(row *domain.SearchResultRow) {
	row.HierarchyPath = domain.HierarchyPath(row.SiteName, row.CellName, row.EquipmentName)
}

func headlines(fields map[string]*string) map[string]string {
	out := make(map[string]string, len(fields))
	for name, fragment := range fields {
		if fragment != nil {
			out[name] = *fragment
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
