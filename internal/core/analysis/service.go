package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fridge-manager/internal/core/fridge"
	"fridge-manager/internal/core/inference"
	"fridge-manager/internal/core/vision"
	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// OCRClient 文字辨識服務
type OCRClient interface {
	Recognize(ctx context.Context, imageData string) (*common.OCRResult, error)
}

// DetectionClient 物件偵測服務
type DetectionClient interface {
	Detect(ctx context.Context, imageData string, minConfidence float64) (*common.DetectionResult, error)
}

// ImagePreparer 圖片前處理
type ImagePreparer interface {
	Prepare(ctx context.Context, imageData string) (string, error)
	Validate(ctx context.Context, imageData string) error
}

// FridgeMerger 冰箱合併入口
type FridgeMerger interface {
	MergeContributions(ctx context.Context, userID string, contributions []common.Contribution) (*common.FridgeSnapshot, *fridge.MergeResult, error)
}

// ImageReport 單張圖片的分析結果
// OCRFailed / DetectionFailed 標記協作服務呼叫失敗，
// 單邊失敗不中斷分析，兩邊都失敗時貢獻清單為空
type ImageReport struct {
	OCRText         string                     `json:"ocr_text,omitempty"`
	OCRFailed       bool                       `json:"ocr_failed,omitempty"`
	DetectionFailed bool                       `json:"detection_failed,omitempty"`
	Detections      []common.Detection         `json:"detections"`
	CorrectedCount  int                        `json:"corrected_count"`
	Resolved        *common.ResolvedIngredient `json:"resolved,omitempty"`
	Contributions   []common.Contribution      `json:"contributions"`
	Added           int                        `json:"added"`
	Merged          int                        `json:"merged"`
}

// Report 一次分析請求的完整結果
type Report struct {
	Images   []ImageReport          `json:"images"`
	Snapshot *common.FridgeSnapshot `json:"fridge"`
}

// Service 影像分析管線
// 每張圖片走 OCR 與物件偵測兩條路，推論出的食材統一合併進冰箱
type Service struct {
	config    *config.Config
	images    ImagePreparer
	ocr       OCRClient
	detection DetectionClient
	engine    *inference.Engine
	corrector *vision.Corrector
	fridge    FridgeMerger
}

// NewService 建立分析服務
func NewService(cfg *config.Config, images ImagePreparer, ocr OCRClient, detection DetectionClient, engine *inference.Engine, corrector *vision.Corrector, merger FridgeMerger) *Service {
	if corrector == nil {
		corrector = vision.NewCorrector(nil)
	}
	return &Service{
		config:    cfg,
		images:    images,
		ocr:       ocr,
		detection: detection,
		engine:    engine,
		corrector: corrector,
		fridge:    merger,
	}
}

// AnalyzeImage 分析單張圖片並把結果合併進使用者的冰箱
func (s *Service) AnalyzeImage(ctx context.Context, userID, imageData string) (*Report, error) {
	prepared, err := s.images.Prepare(ctx, imageData)
	if err != nil {
		return nil, err
	}

	report := s.analyzeOne(ctx, prepared)
	snapshot, err := s.merge(ctx, userID, &report)
	if err != nil {
		return nil, err
	}

	return &Report{
		Images:   []ImageReport{report},
		Snapshot: snapshot,
	}, nil
}

// AnalyzeBatch 逐張分析一批圖片
// 嚴格循序執行並在圖片間停頓，避免壓垮 OCR 與偵測服務
func (s *Service) AnalyzeBatch(ctx context.Context, userID string, images []string) (*Report, error) {
	// 先驗證全部圖片，避免批次做到一半才因壞圖中斷
	for i, imageData := range images {
		if err := s.images.Validate(ctx, imageData); err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
	}

	report := &Report{Images: make([]ImageReport, 0, len(images))}

	for i, imageData := range images {
		if i > 0 && s.config.Analysis.BatchDelay > 0 {
			select {
			case <-time.After(s.config.Analysis.BatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		prepared, err := s.images.Prepare(ctx, imageData)
		if err != nil {
			return nil, err
		}

		imageReport := s.analyzeOne(ctx, prepared)
		snapshot, err := s.merge(ctx, userID, &imageReport)
		if err != nil {
			return nil, err
		}
		report.Images = append(report.Images, imageReport)
		report.Snapshot = snapshot
	}

	return report, nil
}

// AnalyzeText 只走文字推論，不經過圖片與偵測
func (s *Service) AnalyzeText(ctx context.Context, userID, text string) (*Report, error) {
	report := ImageReport{OCRText: text}

	if resolved := s.engine.ResolveText(ctx, text, nil); resolved != nil {
		report.Resolved = resolved
		report.Contributions = append(report.Contributions, common.Contribution{
			Name:       resolved.Name,
			Quantity:   1,
			Confidence: resolved.Confidence,
			Source:     string(resolved.Source),
		})
	}

	snapshot, err := s.merge(ctx, userID, &report)
	if err != nil {
		return nil, err
	}
	return &Report{
		Images:   []ImageReport{report},
		Snapshot: snapshot,
	}, nil
}

// analyzeOne 對已前處理的圖片執行 OCR 與偵測兩條路的推論
func (s *Service) analyzeOne(ctx context.Context, prepared string) ImageReport {
	report := ImageReport{}

	ocrResult, err := s.ocr.Recognize(ctx, prepared)
	if err != nil {
		report.OCRFailed = true
		common.LogWarn("OCR 服務呼叫失敗", zap.Error(err))
	} else {
		report.OCRText = ocrResult.Text
		if report.OCRText != "" {
			common.LogDebug("OCR 辨識完成",
				zap.String("summary", inference.SummarizeText(report.OCRText)),
				zap.Float64("confidence", ocrResult.Confidence))
		}
	}

	detectionResult, err := s.detection.Detect(ctx, prepared, s.config.Analysis.MinDetectionConfidence)
	if err != nil {
		report.DetectionFailed = true
		common.LogWarn("偵測服務呼叫失敗", zap.Error(err))
	}

	var detectedClasses []string
	if detectionResult != nil {
		report.Detections, report.CorrectedCount, detectedClasses = s.visionContributions(detectionResult, &report)
	}

	if report.OCRText != "" {
		if resolved := s.engine.ResolveText(ctx, report.OCRText, detectedClasses); resolved != nil {
			report.Resolved = resolved
			report.Contributions = append(report.Contributions, common.Contribution{
				Name:       resolved.Name,
				Quantity:   1,
				Confidence: resolved.Confidence,
				Source:     string(resolved.Source),
			})
		}
	}

	return report
}

// visionContributions 過濾、補正並翻譯偵測結果，產出可合併的貢獻
func (s *Service) visionContributions(result *common.DetectionResult, report *ImageReport) ([]common.Detection, int, []string) {
	kept := make([]common.Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		if d.Confidence >= s.config.Analysis.MinDetectionConfidence {
			kept = append(kept, d)
		}
	}

	var color *common.ColorAnalysis
	if result.EnhancedInfo != nil {
		color = result.EnhancedInfo.ColorAnalysis
	}
	corrected, correctedCount := s.corrector.CorrectAll(kept, color)

	classes := make([]string, 0, len(corrected))
	for _, d := range corrected {
		name, ok := vision.TranslateClass(d.Class)
		if !ok {
			continue
		}
		classes = append(classes, d.Class)

		source := string(common.SourceDetection)
		if d.Corrected {
			source = string(common.SourceFruitCorrection)
		}
		report.Contributions = append(report.Contributions, common.Contribution{
			Name:       name,
			Quantity:   1,
			Confidence: d.Confidence,
			Source:     source,
		})
	}

	return corrected, correctedCount, classes
}

func (s *Service) merge(ctx context.Context, userID string, report *ImageReport) (*common.FridgeSnapshot, error) {
	if len(report.Contributions) == 0 {
		// 沒有任何推論結果時仍回報目前的冰箱狀態
		snapshot, _, err := s.fridge.MergeContributions(ctx, userID, nil)
		return snapshot, err
	}

	snapshot, stats, err := s.fridge.MergeContributions(ctx, userID, report.Contributions)
	if err != nil {
		return nil, err
	}
	report.Added = stats.Added
	report.Merged = stats.Merged
	return snapshot, nil
}
