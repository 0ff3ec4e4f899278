package common

// Source 推論結果的來源標記（provenance），保留給 UI 顯示與除錯
type Source string

const (
	SourceManual          Source = "manual"
	SourceDetection       Source = "detection"
	SourcePatternMatching Source = "pattern_matching"
	SourceBrandMatch      Source = "brand_match"
	SourceWebSearch       Source = "web_search"
	SourceFruitCorrection Source = "fruit_correction"
	SourceLLM             Source = "llm"
	SourceFallback        Source = "fallback"
)

// ResolvedIngredient 推論管線的最終輸出：一個標準化食材名稱
type ResolvedIngredient struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// BoundingBox 偵測框座標
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection 物件偵測服務回傳的單一偵測結果
// Corrected / OriginalClass 由視覺補正器寫入，至多一次
type Detection struct {
	ID         int         `json:"id"`
	Class      string      `json:"class"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Area       float64     `json:"area,omitempty"`

	Corrected     bool   `json:"corrected,omitempty"`
	OriginalClass string `json:"original_class,omitempty"`
}

// AspectRatio 回傳偵測框的高寬比，無法計算時回傳 0
func (d Detection) AspectRatio() float64 {
	if d.Width <= 0 || d.Height <= 0 {
		return 0
	}
	return d.Height / d.Width
}

// ColorAnalysis 偵測服務附帶的主色彩分析
type ColorAnalysis struct {
	PrimaryColor   string   `json:"primary_color"`
	DominantColors []string `json:"dominant_colors,omitempty"`
}

// EnhancedInfo 偵測服務的附加資訊
type EnhancedInfo struct {
	ColorAnalysis *ColorAnalysis `json:"color_analysis,omitempty"`
}

// DetectionResult 物件偵測服務的完整回應
type DetectionResult struct {
	Detections   []Detection   `json:"detections"`
	EnhancedInfo *EnhancedInfo `json:"enhanced_info,omitempty"`
}

// OCRResult OCR 服務的回應，空白文字視為「無文字」
type OCRResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SearchResult 網頁搜尋的單一結果
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
}

// InventoryItem 冰箱庫存中的一筆食材
// ID 在單一冰箱內唯一且不再重配，Name 保留顯示用原形
type InventoryItem struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Contribution 待合併進冰箱的一筆貢獻
type Contribution struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// FridgeSnapshot 冰箱的可持久化快照
type FridgeSnapshot struct {
	UserID      string          `json:"user_id"`
	Ingredients []InventoryItem `json:"ingredients"`
	SavedAt     string          `json:"saved_at,omitempty"`
	TotalCount  int             `json:"total_count"`
	TotalTypes  int             `json:"total_types"`
}
