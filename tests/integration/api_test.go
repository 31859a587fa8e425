package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdareport/pdareport/internal/handler"
	"github.com/pdareport/pdareport/pkg/calendar"
	"github.com/pdareport/pdareport/pkg/classify"
	"github.com/pdareport/pdareport/pkg/occurrence"
	"github.com/pdareport/pdareport/pkg/report"
)

func newServer() *httptest.Server {
	engine := report.NewEngine(
		calendar.New(calendar.DefaultConfig()),
		classify.DefaultTaxonomy(),
		occurrence.DefaultTolerance,
	)
	h := handler.NewReportHandler(engine, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/report/analyze", h.Analyze)
	mux.HandleFunc("/api/v1/report/integrity", h.Integrity)
	mux.HandleFunc("/api/v1/report/summary", h.Summary)
	return httptest.NewServer(mux)
}

// TestReportAPI_AnalyzeRequest 测试报表分析API的完整请求/响应
func TestReportAPI_AnalyzeRequest(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	request := handler.AnalyzeRequest{
		Orders: []handler.OrderRequest{
			{
				OrderNo:     "SO-2025-0618",
				ModelName:   "GAIA-I",
				MechPartner: "대성테크",
				ElecPartner: "한빛전장",
				Rows: []handler.RawRow{
					{Content: "CABINET ASSY", StartTime: "2025. 6. 2 8:00:00", EndTime: "2025. 6. 2 오후 12:20:00", Progress: "100%"},
					{Content: "BURNER ASSY(TMS)", StartTime: "45810.5416666", EndTime: "45810.625"},
					{Content: "탱크 작업"},
				},
				References: map[string]string{
					"CABINET ASSY": "2h 30m",
				},
			},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(srv.URL+"/api/v1/report/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result handler.AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success || len(result.Results) != 1 {
		t.Fatalf("unexpected response: %+v", result)
	}
	if result.Integrity == nil {
		t.Fatal("integrity report missing")
	}

	order := result.Results[0]
	if order.ModelName != "GAIA-I" {
		t.Errorf("model = %q", order.ModelName)
	}
	for _, tt := range order.TaskTotals {
		if tt.Content == "CABINET ASSY" && tt.TotalHours != 3.0 {
			t.Errorf("CABINET ASSY = %v, want 3.0", tt.TotalHours)
		}
	}
}

// TestReportAPI_IntegrityRoundTrip 分析结果回送定合性检查API
func TestReportAPI_IntegrityRoundTrip(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	analyzeReq := handler.AnalyzeRequest{
		Orders: []handler.OrderRequest{
			{
				OrderNo:   "SO-1",
				ModelName: "GAIA-I",
				Rows:      []handler.RawRow{{Content: "CABINET ASSY"}},
			},
		},
	}
	body, _ := json.Marshal(analyzeReq)
	resp, err := http.Post(srv.URL+"/api/v1/report/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("analyze request failed: %v", err)
	}
	var analyzed handler.AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&analyzed); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	resp.Body.Close()

	integrityReq := handler.IntegrityRequest{Results: analyzed.Results}
	body, _ = json.Marshal(integrityReq)
	resp, err = http.Post(srv.URL+"/api/v1/report/integrity", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("integrity request failed: %v", err)
	}
	defer resp.Body.Close()

	var integrity handler.IntegrityResponse
	if err := json.NewDecoder(resp.Body).Decode(&integrity); err != nil {
		t.Fatalf("decode integrity response: %v", err)
	}
	if !integrity.Success || integrity.Data == nil {
		t.Fatalf("unexpected integrity response: %+v", integrity)
	}
	if integrity.Data.TotalOrders != 1 {
		t.Errorf("total orders = %d", integrity.Data.TotalOrders)
	}
	// JSON 往返后分类/协力统计仍应一致
	if integrity.Data.Summary.TotalNaNByCategory != integrity.Data.Summary.TotalNaNByPartner {
		t.Errorf("NaN totals diverged after round trip: %d vs %d",
			integrity.Data.Summary.TotalNaNByCategory, integrity.Data.Summary.TotalNaNByPartner)
	}
}

// TestReportAPI_BadRequest 非法请求的错误响应
func TestReportAPI_BadRequest(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/report/analyze", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body should be 400, got %d", resp.StatusCode)
	}
}
