package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/david/tender-radar/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query         string
	BuyerName     string
	NoticeType    string
	Status        string // extraction status: "ok", "pending", "empty_text", ... or "all"
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	HasLots       *bool
	SortBy        string
	Limit         int
	Offset        int
}

type ListResult struct {
	Notices []models.Notice `json:"notices"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// selectCols is the column list shared by all notice queries.
const selectCols = `notice_id, title, notice_type, buyer_name, procurement_method,
	procedure_accelerated, description, publish_date, pdf_url,
	total_value_amount, total_value_currency, lots,
	extraction_status, last_extracted_at, created_at`

func scanNotice(scan func(dest ...interface{}) error) (models.Notice, error) {
	var n models.Notice
	var totalAmount *float64
	var totalCurrency *string
	var lotsRaw []byte

	err := scan(
		&n.NoticeID, &n.Title, &n.NoticeType, &n.BuyerName, &n.ProcurementMethod,
		&n.ProcedureAccelerated, &n.Description, &n.PublishDate, &n.PDFURL,
		&totalAmount, &totalCurrency, &lotsRaw,
		&n.ExtractionStatus, &n.LastExtractedAt, &n.CreatedAt,
	)
	if err != nil {
		return n, err
	}

	if totalAmount != nil || (totalCurrency != nil && *totalCurrency != "") {
		n.TotalContractsValue = &models.Money{Amount: totalAmount}
		if totalCurrency != nil {
			n.TotalContractsValue.Currency = *totalCurrency
		}
	}
	if len(lotsRaw) > 0 {
		if err := json.Unmarshal(lotsRaw, &n.Lots); err != nil {
			return n, fmt.Errorf("decode lots for %s: %w", n.NoticeID, err)
		}
	}

	return n, nil
}

// SaveDiscovered upserts a notice stub found by the discovery crawl. Fields
// already populated in the row are never blanked by an empty re-discovery.
func (s *Store) SaveDiscovered(ctx context.Context, n models.Notice, sourceURL string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notices_stage (notice_id, title, notice_type, buyer_name, publish_date, source_url, pdf_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (notice_id) DO UPDATE SET
			title = COALESCE(NULLIF(EXCLUDED.title, ''), notices_stage.title),
			notice_type = COALESCE(NULLIF(EXCLUDED.notice_type, ''), notices_stage.notice_type),
			buyer_name = COALESCE(NULLIF(EXCLUDED.buyer_name, ''), notices_stage.buyer_name),
			publish_date = COALESCE(EXCLUDED.publish_date, notices_stage.publish_date),
			source_url = COALESCE(NULLIF(EXCLUDED.source_url, ''), notices_stage.source_url),
			pdf_url = COALESCE(NULLIF(EXCLUDED.pdf_url, ''), notices_stage.pdf_url),
			updated_at = NOW()
	`, n.NoticeID, n.Title, n.NoticeType, n.BuyerName, n.PublishDate, sourceURL, n.PDFURL)
	if err != nil {
		return fmt.Errorf("upsert notice %s: %w", n.NoticeID, err)
	}
	return nil
}

// MarkExtracted stores a successful extraction: the parsed fields, the lot
// map as JSONB and the raw text the engine saw. Empty extracted strings do
// not blank previously stored values.
func (s *Store) MarkExtracted(ctx context.Context, noticeID string, rec *models.NoticeRecord, rawText string) error {
	lotsJSON, err := json.Marshal(rec.Lots)
	if err != nil {
		return fmt.Errorf("encode lots for %s: %w", noticeID, err)
	}

	var totalAmount interface{}
	var totalCurrency interface{}
	if rec.TotalContractsValue != nil {
		if rec.TotalContractsValue.Amount != nil {
			totalAmount = *rec.TotalContractsValue.Amount
		}
		totalCurrency = nilIfEmpty(rec.TotalContractsValue.Currency)
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE notices_stage SET
			buyer_name = COALESCE(NULLIF($2, ''), buyer_name),
			procurement_method = COALESCE(NULLIF($3, ''), procurement_method),
			procedure_accelerated = COALESCE($4, procedure_accelerated),
			description = COALESCE(NULLIF($5, ''), description),
			total_value_amount = COALESCE($6, total_value_amount),
			total_value_currency = COALESCE($7, total_value_currency),
			lots = $8,
			raw_text = $9,
			extraction_status = 'ok',
			extraction_error = '',
			last_extracted_at = NOW(),
			updated_at = NOW()
		WHERE notice_id = $1
	`, noticeID,
		deref(rec.BuyerName), deref(rec.ProcurementMethod), rec.ProcedureAccelerated,
		deref(rec.Description), totalAmount, totalCurrency, lotsJSON, rawText)
	if err != nil {
		return fmt.Errorf("mark extracted %s: %w", noticeID, err)
	}
	return nil
}

// MarkFailed records a terminal pipeline status for a notice.
func (s *Store) MarkFailed(ctx context.Context, noticeID, status, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notices_stage SET
			extraction_status = $2,
			extraction_error = $3,
			last_extracted_at = NOW(),
			updated_at = NOW()
		WHERE notice_id = $1
	`, noticeID, status, reason)
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", noticeID, err)
	}
	return nil
}

// GetWork returns notices waiting for extraction. With force set, already
// processed notices are included so a batch can be re-run.
func (s *Store) GetWork(ctx context.Context, limit int, force bool) ([]models.Notice, error) {
	where := "WHERE extraction_status = 'pending'"
	if force {
		where = "WHERE 1=1"
	}
	sql := fmt.Sprintf(`
		SELECT %s, source_url FROM notices_stage
		%s
		ORDER BY publish_date DESC NULLS LAST, created_at ASC
		LIMIT $1
	`, selectCols, where)

	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query work: %w", err)
	}
	defer rows.Close()

	var notices []models.Notice
	for rows.Next() {
		var sourceURL string
		n, err := scanNotice(func(dest ...interface{}) error {
			return rows.Scan(append(dest, &sourceURL)...)
		})
		if err != nil {
			return nil, fmt.Errorf("scan work row: %w", err)
		}
		if n.PDFURL == "" {
			n.PDFURL = sourceURL
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

func (s *Store) ListNotices(ctx context.Context, params ListParams) (*ListResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR buyer_name ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.BuyerName != "" {
		where += fmt.Sprintf(" AND buyer_name = $%d", argIdx)
		args = append(args, params.BuyerName)
		argIdx++
	}
	if params.NoticeType != "" {
		where += fmt.Sprintf(" AND notice_type = $%d", argIdx)
		args = append(args, params.NoticeType)
		argIdx++
	}
	if params.Status != "" && params.Status != "all" {
		where += fmt.Sprintf(" AND extraction_status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.PublishedFrom != nil {
		where += fmt.Sprintf(" AND publish_date >= $%d", argIdx)
		args = append(args, *params.PublishedFrom)
		argIdx++
	}
	if params.PublishedTo != nil {
		where += fmt.Sprintf(" AND publish_date <= $%d", argIdx)
		args = append(args, *params.PublishedTo)
		argIdx++
	}
	if params.HasLots != nil {
		if *params.HasLots {
			where += " AND lots IS NOT NULL AND lots != '{}'::jsonb"
		} else {
			where += " AND (lots IS NULL OR lots = '{}'::jsonb)"
		}
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM notices_stage " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM notices_stage %s", selectCols, where)
	switch params.SortBy {
	case "buyer":
		selectSQL += " ORDER BY buyer_name ASC, publish_date DESC NULLS LAST"
	case "extracted":
		selectSQL += " ORDER BY last_extracted_at DESC NULLS LAST"
	default:
		selectSQL += " ORDER BY publish_date DESC NULLS LAST, created_at DESC"
	}

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var notices []models.Notice
	for rows.Next() {
		n, err := scanNotice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if notices == nil {
		notices = []models.Notice{}
	}

	return &ListResult{
		Notices: notices,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
	}, nil
}

func (s *Store) GetNotice(ctx context.Context, noticeID string) (*models.Notice, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM notices_stage
		WHERE notice_id = $1
	`, selectCols)
	row := s.pool.QueryRow(ctx, sql, noticeID)

	n, err := scanNotice(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}

	return &n, nil
}

// GetRawText returns the stored document text for a notice, for re-running
// the extractor without refetching.
func (s *Store) GetRawText(ctx context.Context, noticeID string) (string, error) {
	var raw string
	err := s.pool.QueryRow(ctx, "SELECT raw_text FROM notices_stage WHERE notice_id = $1", noticeID).Scan(&raw)
	if err != nil {
		return "", fmt.Errorf("raw text for %s: %w", noticeID, err)
	}
	return raw, nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notices_stage").Scan(&total)
	stats["total"] = total

	var withLots int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notices_stage WHERE lots IS NOT NULL AND lots != '{}'::jsonb").Scan(&withLots)
	stats["with_lots"] = withLots

	var buyers int
	s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT buyer_name) FROM notices_stage WHERE buyer_name != ''").Scan(&buyers)
	stats["buyers"] = buyers

	statusCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT extraction_status, COUNT(*) FROM notices_stage GROUP BY extraction_status")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				statusCounts[status] = count
			}
		}
	}
	stats["extraction_status_counts"] = statusCounts

	return stats, nil
}

// ExtractRun is one recorded batch of the extraction pipeline.
type ExtractRun struct {
	RunID          uuid.UUID  `json:"run_id"`
	TriggeredBy    string     `json:"triggered_by"`
	Status         string     `json:"status"`
	Total          int        `json:"total"`
	OK             int        `json:"ok"`
	EmptyText      int        `json:"empty_text"`
	DownloadFailed int        `json:"download_failed"`
	Exceptions     int        `json:"exceptions"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

func (s *Store) StartRun(ctx context.Context, triggeredBy string) (uuid.UUID, error) {
	var runID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO extract_runs (triggered_by, status)
		VALUES ($1, 'running')
		RETURNING run_id
	`, triggeredBy).Scan(&runID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("start run: %w", err)
	}
	return runID, nil
}

func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, status string, total, ok, emptyText, downloadFailed, exceptions int, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("null")
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE extract_runs SET
			status = $2, total = $3, ok = $4, empty_text = $5,
			download_failed = $6, exceptions = $7, details = $8,
			completed_at = NOW()
		WHERE run_id = $1
	`, runID, status, total, ok, emptyText, downloadFailed, exceptions, detailsJSON)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]ExtractRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, triggered_by, status, total, ok, empty_text, download_failed, exceptions, started_at, completed_at
		FROM extract_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ExtractRun
	for rows.Next() {
		var r ExtractRun
		if err := rows.Scan(&r.RunID, &r.TriggeredBy, &r.Status, &r.Total, &r.OK,
			&r.EmptyText, &r.DownloadFailed, &r.Exceptions, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
