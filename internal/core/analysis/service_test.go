package analysis

import (
	"context"
	"errors"
	"testing"

	"fridge-manager/internal/core/fridge"
	"fridge-manager/internal/core/inference"
	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

type stubPreparer struct {
	err         error
	validateErr error
}

func (s *stubPreparer) Prepare(ctx context.Context, imageData string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return imageData, nil
}

func (s *stubPreparer) Validate(ctx context.Context, imageData string) error {
	return s.validateErr
}

type stubOCR struct {
	text  string
	err   error
	calls int
}

func (s *stubOCR) Recognize(ctx context.Context, imageData string) (*common.OCRResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &common.OCRResult{Text: s.text, Confidence: 0.9}, nil
}

type stubDetection struct {
	result *common.DetectionResult
	err    error
	calls  int
}

func (s *stubDetection) Detect(ctx context.Context, imageData string, minConfidence float64) (*common.DetectionResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Analysis.MinDetectionConfidence = 0.5
	cfg.Fridge.QueueSize = 16
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, ocr OCRClient, detection DetectionClient) (*Service, *fridge.Manager) {
	t.Helper()
	manager := fridge.NewManager(cfg, fridge.NewMemoryStore())
	t.Cleanup(manager.Close)

	engine := inference.NewEngine(nil, nil, nil, nil, false)
	svc := NewService(cfg, &stubPreparer{}, ocr, detection, engine, nil, manager)
	return svc, manager
}

func TestAnalyzeImageTextPath(t *testing.T) {
	cfg := newTestConfig()
	ocr := &stubOCR{text: "매일 두유99.9% 1000ml"}
	detection := &stubDetection{result: &common.DetectionResult{}}
	svc, _ := newTestService(t, cfg, ocr, detection)

	report, err := svc.AnalyzeImage(context.Background(), "u", "aW1hZ2U=")
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	if len(report.Images) != 1 {
		t.Fatalf("len(Images) = %d, want 1", len(report.Images))
	}

	img := report.Images[0]
	if img.Resolved == nil {
		t.Fatal("Resolved is nil")
	}
	if img.Resolved.Name != "매일 두유" {
		t.Errorf("Resolved.Name = %q, want 매일 두유", img.Resolved.Name)
	}
	if img.Resolved.Confidence != 0.95 || img.Resolved.Source != common.SourceBrandMatch {
		t.Errorf("Resolved = %+v", img.Resolved)
	}
	if img.Added != 1 {
		t.Errorf("Added = %d, want 1", img.Added)
	}
	if report.Snapshot.TotalTypes != 1 || report.Snapshot.Ingredients[0].Name != "매일 두유" {
		t.Errorf("snapshot = %+v", report.Snapshot)
	}
}

func TestAnalyzeImageVisionPath(t *testing.T) {
	cfg := newTestConfig()
	ocr := &stubOCR{text: ""}
	detection := &stubDetection{result: &common.DetectionResult{
		Detections: []common.Detection{
			{ID: 1, Class: "apple", Confidence: 0.8, Width: 100, Height: 95},
			{ID: 2, Class: "banana", Confidence: 0.9, Width: 100, Height: 50},
			{ID: 3, Class: "person", Confidence: 0.99, Width: 50, Height: 150},
			{ID: 4, Class: "carrot", Confidence: 0.3, Width: 100, Height: 40},
		},
		EnhancedInfo: &common.EnhancedInfo{
			ColorAnalysis: &common.ColorAnalysis{PrimaryColor: "진한 초록색"},
		},
	}}
	svc, _ := newTestService(t, cfg, ocr, detection)

	report, err := svc.AnalyzeImage(context.Background(), "u", "aW1hZ2U=")
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	img := report.Images[0]

	// 信賴度 0.3 的 carrot 被過濾，person 不是食材
	if len(img.Detections) != 3 {
		t.Fatalf("len(Detections) = %d, want 3", len(img.Detections))
	}
	if img.CorrectedCount != 1 {
		t.Errorf("CorrectedCount = %d, want 1", img.CorrectedCount)
	}

	names := map[string]common.Contribution{}
	for _, c := range img.Contributions {
		names[c.Name] = c
	}
	// 초록 배경의 apple 은 아보카도로 보정
	avocado, ok := names["아보카도"]
	if !ok {
		t.Fatalf("아보카도 contribution missing: %+v", img.Contributions)
	}
	if avocado.Source != "fruit_correction" {
		t.Errorf("avocado source = %q, want fruit_correction", avocado.Source)
	}
	if _, ok := names["바나나"]; !ok {
		t.Error("바나나 contribution missing")
	}
	if len(img.Contributions) != 2 {
		t.Errorf("len(Contributions) = %d, want 2", len(img.Contributions))
	}
}

func TestAnalyzeImagePartialFailureTolerated(t *testing.T) {
	cfg := newTestConfig()
	ocr := &stubOCR{err: errors.New("ocr down")}
	detection := &stubDetection{result: &common.DetectionResult{
		Detections: []common.Detection{{ID: 1, Class: "banana", Confidence: 0.9}},
	}}
	svc, _ := newTestService(t, cfg, ocr, detection)

	report, err := svc.AnalyzeImage(context.Background(), "u", "aW1hZ2U=")
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	img := report.Images[0]
	if !img.OCRFailed {
		t.Error("OCRFailed not set")
	}
	if len(img.Contributions) != 1 || img.Contributions[0].Name != "바나나" {
		t.Errorf("Contributions = %+v", img.Contributions)
	}
}

func TestAnalyzeImageBothServicesDown(t *testing.T) {
	cfg := newTestConfig()
	ocr := &stubOCR{err: errors.New("ocr down")}
	detection := &stubDetection{err: errors.New("detection down")}
	svc, _ := newTestService(t, cfg, ocr, detection)

	report, err := svc.AnalyzeImage(context.Background(), "u", "aW1hZ2U=")
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	img := report.Images[0]
	if !img.OCRFailed || !img.DetectionFailed {
		t.Error("failure flags not set")
	}
	if len(img.Contributions) != 0 {
		t.Errorf("Contributions = %+v, want empty", img.Contributions)
	}
	if report.Snapshot == nil || len(report.Snapshot.Ingredients) != 0 {
		t.Errorf("snapshot = %+v, want empty fridge", report.Snapshot)
	}
}

func TestAnalyzeImageInvalidImage(t *testing.T) {
	cfg := newTestConfig()
	manager := fridge.NewManager(cfg, fridge.NewMemoryStore())
	t.Cleanup(manager.Close)

	engine := inference.NewEngine(nil, nil, nil, nil, false)
	svc := NewService(cfg, &stubPreparer{err: errors.New("bad image")}, &stubOCR{}, &stubDetection{}, engine, nil, manager)

	if _, err := svc.AnalyzeImage(context.Background(), "u", "xx"); err == nil {
		t.Error("expected error from image preparation")
	}
}

func TestAnalyzeBatchSequential(t *testing.T) {
	cfg := newTestConfig()
	ocr := &stubOCR{text: "우유 1000ml"}
	detection := &stubDetection{result: &common.DetectionResult{}}
	svc, _ := newTestService(t, cfg, ocr, detection)

	report, err := svc.AnalyzeBatch(context.Background(), "u", []string{"aW1n", "aW1n", "aW1n"})
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(report.Images) != 3 {
		t.Fatalf("len(Images) = %d, want 3", len(report.Images))
	}
	if ocr.calls != 3 || detection.calls != 3 {
		t.Errorf("ocr calls = %d, detection calls = %d, want 3/3", ocr.calls, detection.calls)
	}

	// 同一款牛奶三次合併為一筆，數量累積
	if report.Snapshot.TotalTypes != 1 {
		t.Errorf("TotalTypes = %d, want 1", report.Snapshot.TotalTypes)
	}
	if report.Snapshot.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", report.Snapshot.TotalCount)
	}
	if report.Images[0].Added != 1 || report.Images[1].Merged != 1 {
		t.Errorf("merge stats = %+v", report.Images)
	}
}

func TestAnalyzeBatchValidatesBeforeProcessing(t *testing.T) {
	cfg := newTestConfig()
	manager := fridge.NewManager(cfg, fridge.NewMemoryStore())
	t.Cleanup(manager.Close)

	ocr := &stubOCR{text: "우유 1000ml"}
	detection := &stubDetection{result: &common.DetectionResult{}}
	engine := inference.NewEngine(nil, nil, nil, nil, false)
	preparer := &stubPreparer{validateErr: errors.New("bad image")}
	svc := NewService(cfg, preparer, ocr, detection, engine, nil, manager)

	_, err := svc.AnalyzeBatch(context.Background(), "u", []string{"aW1n", "xx"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	// 驗證失敗時整批不得動到冰箱，也不該呼叫任何協作服務
	if ocr.calls != 0 || detection.calls != 0 {
		t.Errorf("ocr calls = %d, detection calls = %d, want 0/0", ocr.calls, detection.calls)
	}
	snapshot, err := manager.Snapshot(context.Background(), "u")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snapshot.Ingredients) != 0 {
		t.Errorf("fridge mutated: %+v", snapshot.Ingredients)
	}
}

func TestAnalyzeText(t *testing.T) {
	cfg := newTestConfig()
	svc, _ := newTestService(t, cfg, &stubOCR{}, &stubDetection{})

	report, err := svc.AnalyzeText(context.Background(), "u", "농심 신라면")
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	img := report.Images[0]
	// 規則表的 라면 條目先於品牌比對命中
	if img.Resolved == nil || img.Resolved.Name != "라면" {
		t.Errorf("Resolved = %+v", img.Resolved)
	}
	if img.Resolved.Confidence != 0.95 || img.Resolved.Source != common.SourcePatternMatching {
		t.Errorf("Resolved = %+v", img.Resolved)
	}
	if report.Snapshot.Ingredients[0].Name != "라면" {
		t.Errorf("snapshot = %+v", report.Snapshot)
	}
}
