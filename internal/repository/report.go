// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pdareport/pdareport/pkg/model"
)

// ReportRepositoryInterface 报表执行存档仓储接口
type ReportRepositoryInterface interface {
	SaveRun(ctx context.Context, run *model.ReportRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*model.ReportRun, error)
	ListRuns(ctx context.Context, filter ListFilter) ([]*model.ReportRun, int, error)
	PartnerSummary(ctx context.Context, startDate, endDate string) ([]model.PartnerPeriodSummary, error)
}

// ReportRepository 报表执行存档仓储实现
type ReportRepository struct {
	db DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// execer 事务内语句执行接口
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveRun 保存一次报表执行及其订单结果
// 订单结果整体以 JSONB 存档；协力公司统计另行展开成行，便于期间汇总查询。
// 全部写入在单个事务内完成，任何一条失败整体回滚，
// 避免残缺的执行记录污染期间汇总。
func (r *ReportRepository) SaveRun(ctx context.Context, run *model.ReportRun) error {
	if run.ID == uuid.Nil {
		run.BaseModel = model.NewBaseModel()
	}
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		return r.insertRun(ctx, tx, run)
	})
}

// insertRun 在给定执行器内写入执行记录、订单结果与协力公司统计
func (r *ReportRepository) insertRun(ctx context.Context, ex execer, run *model.ReportRun) error {
	now := time.Now()

	_, err := ex.ExecContext(ctx, `
		INSERT INTO report_runs (id, execution_time, session, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.ExecutionTime, run.Session, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存报表执行失败: %w", err)
	}

	for i := range run.Results {
		res := &run.Results[i]
		payload, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("订单结果序列化失败: %w", err)
		}
		_, err = ex.ExecContext(ctx, `
			INSERT INTO order_results (id, run_id, order_no, model_name, mech_partner, elec_partner, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), run.ID, res.OrderNo, res.ModelName,
			res.MechPartner, res.ElecPartner, payload, now,
		)
		if err != nil {
			return fmt.Errorf("保存订单结果失败: %w", err)
		}

		for partner, stats := range res.PartnerStats {
			_, err = ex.ExecContext(ctx, `
				INSERT INTO partner_occurrences (id, run_id, order_no, partner, nan_count, ot_count, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				uuid.New(), run.ID, res.OrderNo, partner,
				stats.NaNCount, stats.OTCount, now,
			)
			if err != nil {
				return fmt.Errorf("保存协力公司统计失败: %w", err)
			}
		}
	}

	return nil
}

// GetRun 按ID读取报表执行（含订单结果）
func (r *ReportRepository) GetRun(ctx context.Context, id uuid.UUID) (*model.ReportRun, error) {
	run := &model.ReportRun{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, execution_time, session, created_at, updated_at
		FROM report_runs WHERE id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&run.ID, &run.ExecutionTime, &run.Session, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取报表执行失败: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM order_results WHERE run_id = $1 ORDER BY created_at`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("读取订单结果失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("扫描订单结果失败: %w", err)
		}
		var res model.OrderResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("订单结果反序列化失败: %w", err)
		}
		run.Results = append(run.Results, res)
	}
	return run, rows.Err()
}

// buildListWhere 依过滤器构建 WHERE 子句与参数
// 机型/协力公司过滤借 order_results 子查询实现，返回下一个可用的参数序号
func buildListWhere(filter ListFilter) (string, []interface{}, int) {
	where := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	idx := 1
	if filter.StartDate != "" {
		where += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, filter.StartDate)
		idx++
	}
	if filter.EndDate != "" {
		where += fmt.Sprintf(" AND created_at < ($%d::date + 1)", idx)
		args = append(args, filter.EndDate)
		idx++
	}
	if filter.ModelName != "" {
		where += fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM order_results o WHERE o.run_id = report_runs.id AND o.model_name = $%d)", idx)
		args = append(args, filter.ModelName)
		idx++
	}
	if filter.Partner != "" {
		where += fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM order_results o WHERE o.run_id = report_runs.id AND (o.mech_partner = $%d OR o.elec_partner = $%d))",
			idx, idx)
		args = append(args, filter.Partner)
		idx++
	}
	return where, args, idx
}

// ListRuns 按过滤器读取报表执行列表（不含订单明细）
func (r *ReportRepository) ListRuns(ctx context.Context, filter ListFilter) ([]*model.ReportRun, int, error) {
	where, args, idx := buildListWhere(filter)

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM report_runs "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("统计报表执行失败: %w", err)
	}

	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}
	query := fmt.Sprintf(`
		SELECT id, execution_time, session, created_at, updated_at
		FROM report_runs %s ORDER BY created_at %s LIMIT $%d OFFSET $%d`,
		where, dir, idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("读取报表执行列表失败: %w", err)
	}
	defer rows.Close()

	var runs []*model.ReportRun
	for rows.Next() {
		run := &model.ReportRun{}
		if err := rows.Scan(&run.ID, &run.ExecutionTime, &run.Session, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("扫描报表执行失败: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// PartnerSummary 按协力公司汇总指定期间的 NaN/超时累计
// 周报/月报热力图的数据核心：图表渲染由外部报表层负责
func (r *ReportRepository) PartnerSummary(ctx context.Context, startDate, endDate string) ([]model.PartnerPeriodSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT partner,
		       COALESCE(SUM(nan_count), 0),
		       COALESCE(SUM(ot_count), 0),
		       COUNT(DISTINCT order_no)
		FROM partner_occurrences
		WHERE created_at >= $1 AND created_at < ($2::date + 1)
		GROUP BY partner
		ORDER BY partner`,
		startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("协力公司期间汇总失败: %w", err)
	}
	defer rows.Close()

	var summaries []model.PartnerPeriodSummary
	for rows.Next() {
		var s model.PartnerPeriodSummary
		if err := rows.Scan(&s.Partner, &s.NaNCount, &s.OTCount, &s.OrderCount); err != nil {
			return nil, fmt.Errorf("扫描协力公司汇总失败: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
