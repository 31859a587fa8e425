// Package handler 提供API处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pdareport/pdareport/internal/metrics"
	"github.com/pdareport/pdareport/internal/repository"
	"github.com/pdareport/pdareport/pkg/errors"
	"github.com/pdareport/pdareport/pkg/logger"
	"github.com/pdareport/pdareport/pkg/model"
	"github.com/pdareport/pdareport/pkg/report"
	"github.com/pdareport/pdareport/pkg/worktime"
)

// RawRow 外部表格行的原始文本形式
// 时间戳与进度保持原文，解析失败降级为缺失而非报错
type RawRow struct {
	Content   string `json:"content"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Progress  string `json:"progress"`
}

// OrderRequest 单个订单的分析请求
type OrderRequest struct {
	OrderNo     string            `json:"order_no"`
	ModelName   string            `json:"model_name"`
	MechPartner string            `json:"mech_partner"`
	ElecPartner string            `json:"elec_partner"`
	Rows        []RawRow          `json:"rows"`
	References  map[string]string `json:"references,omitempty"` // 作业名 → 基准工时文本（"3h 30m" 或小数）
}

// AnalyzeRequest 报表分析请求
type AnalyzeRequest struct {
	Orders []OrderRequest `json:"orders"`
	Save   bool           `json:"save"` // 是否存档本次执行
}

// AnalyzeResponse 报表分析响应
type AnalyzeResponse struct {
	Success   bool                    `json:"success"`
	RunID     string                  `json:"run_id,omitempty"`
	Results   []model.OrderResult     `json:"results,omitempty"`
	Integrity *report.IntegrityReport `json:"integrity,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// IntegrityRequest 定合性检查请求
type IntegrityRequest struct {
	Results []model.OrderResult `json:"results"`
}

// IntegrityResponse 定合性检查响应
type IntegrityResponse struct {
	Success bool                    `json:"success"`
	Data    *report.IntegrityReport `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// SummaryResponse 协力公司期间汇总响应
type SummaryResponse struct {
	Success bool                         `json:"success"`
	Data    []model.PartnerPeriodSummary `json:"data,omitempty"`
	Error   string                       `json:"error,omitempty"`
}

// RunsResponse 报表执行列表响应
type RunsResponse struct {
	Success bool               `json:"success"`
	Data    []*model.ReportRun `json:"data"`
	Total   int                `json:"total"`
}

// RunResponse 单次报表执行响应
type RunResponse struct {
	Success bool             `json:"success"`
	Data    *model.ReportRun `json:"data,omitempty"`
}

// ReportHandler 报表分析API处理器
type ReportHandler struct {
	engine *report.Engine
	repo   repository.ReportRepositoryInterface
	log    *logger.ReportLogger
}

// NewReportHandler 创建报表处理器
// repo 可为 nil：无数据库环境下仅做内存分析，不存档
func NewReportHandler(engine *report.Engine, repo repository.ReportRepositoryInterface) *ReportHandler {
	return &ReportHandler{
		engine: engine,
		repo:   repo,
		log:    logger.NewReportLogger(),
	}
}

// Analyze 订单分析API
// POST /api/v1/report/analyze
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Orders) == 0 {
		respondError(w, errors.New(errors.CodeEmptyRowSet, "orders 不能为空"))
		return
	}

	logger.Info().
		Int("orders", len(req.Orders)).
		Bool("save", req.Save).
		Msg("接收报表分析请求")

	inputs := make([]report.Input, 0, len(req.Orders))
	for _, o := range req.Orders {
		inputs = append(inputs, h.toInput(o))
	}

	started := time.Now()
	results := h.engine.ProcessAll(inputs)
	for i := range results {
		res := &results[i]
		metrics.RecordOrderAnalysis(res.ModelName, true, res.TotalTaskRows(), time.Since(started))
		for cat, stats := range res.OccurrenceStats {
			metrics.RecordOccurrences(string(cat), stats.NaNCount, stats.OTCount)
		}
		ratios := res.Ratios()
		if res.MechPartner != "" {
			metrics.SetPartnerNaNRatio(res.MechPartner, ratios.MechNaNRatio)
		}
		if res.ElecPartner != "" {
			metrics.SetPartnerNaNRatio(res.ElecPartner, ratios.ElecNaNRatio)
		}
	}
	metrics.SetLastRunOrders(len(results))

	integrity := report.CrossCheck(results)
	for _, warning := range integrity.Warnings {
		h.log.IntegrityWarning(warning)
	}

	resp := AnalyzeResponse{
		Success:   true,
		Results:   results,
		Integrity: integrity,
	}

	if req.Save && h.repo != nil {
		run := h.newRun(results)
		if err := h.repo.SaveRun(r.Context(), run); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "存档失败"))
			return
		}
		h.log.RunSaved(run.ID.String(), len(run.Results))
		resp.RunID = run.ID.String()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Integrity 定合性检查API（对外部提供的批量结果做交叉检查）
// POST /api/v1/report/integrity
func (h *ReportHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req IntegrityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	resp := IntegrityResponse{
		Success: true,
		Data:    report.CrossCheck(req.Results),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Summary 协力公司期间汇总API
// GET /api/v1/report/summary?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.repo == nil {
		appErr := errors.New(errors.CodeInternal, "存档未启用")
		appErr.HTTPStatus = http.StatusServiceUnavailable
		respondError(w, appErr)
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		respondError(w, errors.InvalidInput("start/end", "必填，格式 YYYY-MM-DD"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	summaries, err := h.repo.PartnerSummary(ctx, start, end)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "汇总查询失败"))
		return
	}

	resp := SummaryResponse{Success: true, Data: summaries}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Runs 报表执行列表API
// GET /api/v1/report/runs?start=YYYY-MM-DD&end=YYYY-MM-DD&model=&partner=&limit=&offset=
func (h *ReportHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.repo == nil {
		appErr := errors.New(errors.CodeInternal, "存档未启用")
		appErr.HTTPStatus = http.StatusServiceUnavailable
		respondError(w, appErr)
		return
	}

	q := r.URL.Query()
	filter := repository.DefaultListFilter().WithDateRange(q.Get("start"), q.Get("end"))
	filter.ModelName = q.Get("model")
	filter.Partner = q.Get("partner")
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter = filter.WithLimit(n)
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter = filter.WithOffset(n)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	runs, total, err := h.repo.ListRuns(ctx, filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "执行列表查询失败"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RunsResponse{Success: true, Data: runs, Total: total})
}

// Run 单次报表执行查询API（含订单明细）
// GET /api/v1/report/run?id=<uuid>
func (h *ReportHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.repo == nil {
		appErr := errors.New(errors.CodeInternal, "存档未启用")
		appErr.HTTPStatus = http.StatusServiceUnavailable
		respondError(w, appErr)
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		respondError(w, errors.InvalidInput("id", "无效的执行ID格式"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	run, err := h.repo.GetRun(ctx, id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "执行记录查询失败"))
		return
	}
	if run == nil {
		respondError(w, errors.NotFound("报表执行", id.String()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RunResponse{Success: true, Data: run})
}

// toInput 将原始文本行转换为引擎输入
func (h *ReportHandler) toInput(o OrderRequest) report.Input {
	rows := make([]model.TaskRecord, 0, len(o.Rows))
	for _, raw := range o.Rows {
		row := model.TaskRecord{Content: raw.Content}
		row.StartTime = h.parseField(o.OrderNo, "start_time", raw.StartTime)
		row.EndTime = h.parseField(o.OrderNo, "end_time", raw.EndTime)
		row.Progress = worktime.ParseProgress(raw.Progress)
		rows = append(rows, row)
	}

	var refs model.ReferenceDurations
	if len(o.References) > 0 {
		refs = make(model.ReferenceDurations, len(o.References))
		for task, text := range o.References {
			if hours, ok := worktime.ParseReferenceHours(text); ok {
				refs[task] = hours
			}
		}
	}

	return report.Input{
		OrderNo:     o.OrderNo,
		ModelName:   o.ModelName,
		MechPartner: o.MechPartner,
		ElecPartner: o.ElecPartner,
		Rows:        rows,
		References:  refs,
	}
}

// parseField 解析时间戳字段，失败时计数并降级为缺失
func (h *ReportHandler) parseField(orderNo, field, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t := worktime.ParseTimestamp(raw)
	if t == nil {
		metrics.RecordParseFailure(field)
		h.log.ParseFailure(orderNo, field, raw)
	}
	return t
}

// newRun 构建一次报表执行记录
// 回次编号沿用既有约定：周一=1 … 周日=7
func (h *ReportHandler) newRun(results []model.OrderResult) *model.ReportRun {
	now := time.Now()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return &model.ReportRun{
		BaseModel:     model.NewBaseModel(),
		ExecutionTime: now.Format("20060102_150405"),
		Session:       weekday,
		Results:       results,
	}
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"code":    err.Code,
		"error":   err.Message,
		"details": err.Details,
	})
}
