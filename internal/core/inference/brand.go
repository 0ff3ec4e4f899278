package inference

import "strings"

// BrandCategory 表示品牌底下的一個商品分類
type BrandCategory struct {
	Name     string
	Products []string
}

// BrandEntry 表示一個品牌與其分類後的商品清單
// 分類順序即推測代表商品時的優先順序
type BrandEntry struct {
	Brand      string
	Categories []BrandCategory
}

// BrandMatch 為品牌偵測結果，Score 為比對強度（非信心值）
type BrandMatch struct {
	Brand    string
	Product  string
	Category string
	Score    int
	FullName string
}

// DefaultBrandCatalog 內建的韓國品牌商品目錄
var DefaultBrandCatalog = []BrandEntry{
	{Brand: "농심", Categories: []BrandCategory{
		{Name: "라면류", Products: []string{"신라면", "너구리", "안성탕면", "짜파게티", "육개장", "새우탕", "튀김우동"}},
		{Name: "스낵류", Products: []string{"올리브", "포테토칩", "감자깡", "새우깡"}},
		{Name: "기타", Products: []string{"둥지냉면"}},
	}},
	{Brand: "오뚜기", Categories: []BrandCategory{
		{Name: "라면류", Products: []string{"진라면", "스낵면", "컵누들"}},
		{Name: "소스류", Products: []string{"참치마요", "케챱", "마요네즈"}},
		{Name: "카레류", Products: []string{"3분카레", "카레"}},
		{Name: "조미료", Products: []string{"미원", "다시다"}},
	}},
	{Brand: "롯데", Categories: []BrandCategory{
		{Name: "과자류", Products: []string{"초코파이", "빼빼로", "칸쵸", "꼬깔콘"}},
		{Name: "초콜릿류", Products: []string{"가나초콜릿", "드림카카오"}},
		{Name: "아이스크림", Products: []string{"메로나", "브라보콘"}},
		{Name: "껌류", Products: []string{"자일리톨"}},
	}},
	{Brand: "해태", Categories: []BrandCategory{
		{Name: "과자류", Products: []string{"홈런볼", "맛동산", "오예스", "허니버터칩"}},
		{Name: "음료류", Products: []string{"식혜", "수정과"}},
	}},
	{Brand: "오리온", Categories: []BrandCategory{
		{Name: "과자류", Products: []string{"초코파이", "참붕어빵", "치토스"}},
		{Name: "음료류", Products: []string{"닥터유"}},
	}},
	{Brand: "삼양", Categories: []BrandCategory{
		{Name: "라면류", Products: []string{"불닭볶음면", "까르보불닭", "삼양라면", "짜장불닭"}},
	}},
	{Brand: "팔도", Categories: []BrandCategory{
		{Name: "라면류", Products: []string{"팔도비빔면", "왕뚜껑"}},
	}},
	{Brand: "CJ", Categories: []BrandCategory{
		{Name: "즉석밥", Products: []string{"햇반"}},
		{Name: "냉동식품", Products: []string{"비비고"}},
		{Name: "조미료", Products: []string{"백설"}},
	}},
	{Brand: "동원", Categories: []BrandCategory{
		{Name: "통조림", Products: []string{"참치캔", "리챔"}},
		{Name: "김치류", Products: []string{"김치찌개", "양반김"}},
	}},
	{Brand: "빙그레", Categories: []BrandCategory{
		{Name: "유제품", Products: []string{"바나나우유", "딸기우유", "초코우유"}},
		{Name: "아이스크림", Products: []string{"메로나", "투게더", "빵빠레"}},
	}},
	{Brand: "매일", Categories: []BrandCategory{
		{Name: "유제품", Products: []string{"매일우유", "상하목장", "소화가잘되는우유", "두유"}},
	}},
	{Brand: "서울우유", Categories: []BrandCategory{
		{Name: "유제품", Products: []string{"서울우유", "아이셔", "카페라떼"}},
	}},
	{Brand: "코카콜라", Categories: []BrandCategory{
		{Name: "음료류", Products: []string{"코카콜라", "스프라이트", "환타", "파워에이드"}},
	}},
	{Brand: "펩시", Categories: []BrandCategory{
		{Name: "음료류", Products: []string{"펩시콜라", "마운틴듀", "칠성사이다"}},
	}},
	{Brand: "롯데칠성", Categories: []BrandCategory{
		{Name: "음료류", Products: []string{"칠성사이다", "델몬트", "트레비"}},
	}},
	{Brand: "동서식품", Categories: []BrandCategory{
		{Name: "커피류", Products: []string{"맥심", "카누"}},
		{Name: "음료류", Products: []string{"포스트"}},
	}},
	{Brand: "네슬레", Categories: []BrandCategory{
		{Name: "커피류", Products: []string{"네스카페"}},
		{Name: "과자류", Products: []string{"킷캣"}},
	}},
	{Brand: "크라운", Categories: []BrandCategory{
		{Name: "과자류", Products: []string{"산도", "쿠크다스"}},
	}},
	{Brand: "동양제과", Categories: []BrandCategory{
		{Name: "과자류", Products: []string{"초코하임", "요하임"}},
	}},
	{Brand: "남양", Categories: []BrandCategory{
		{Name: "음료류", Products: []string{"초코에몽 프로틴"}},
	}},
}

// DefaultBeverageKeywords 飲料相關關鍵字，搭配 ml 單位判斷是否為飲品
var DefaultBeverageKeywords = []string{
	"우유", "두유", "주스", "밀크", "드링크", "음료", "쥬스", "라떼", "커피", "차", "티",
	"콜라", "사이다", "탄산", "물", "생수", "이온", "스포츠", "에너지", "비타민",
	"요구르트", "요거트", "셰이크", "스무디", "프라페", "아메리카노", "에스프레소",
	"카푸치노", "마키아토", "모카", "녹차", "홍차", "보이차", "우롱차", "허브차",
	"레모네이드", "에이드", "코코아", "핫초콜릿", "소주", "맥주", "와인", "막걸리",
}

// BrandMatcher 以唯讀品牌目錄偵測品牌與商品
type BrandMatcher struct {
	catalog          []BrandEntry
	beverageKeywords []string
}

// NewBrandMatcher 建立品牌偵測器，catalog 或 beverageKeywords 為 nil 時使用內建資料
func NewBrandMatcher(catalog []BrandEntry, beverageKeywords []string) *BrandMatcher {
	if catalog == nil {
		catalog = DefaultBrandCatalog
	}
	if beverageKeywords == nil {
		beverageKeywords = DefaultBeverageKeywords
	}
	return &BrandMatcher{catalog: catalog, beverageKeywords: beverageKeywords}
}

// containsToken 在前處理後的文字中比對目錄詞條，拉丁字母不分大小寫
func containsToken(preprocessed, upper, token string) bool {
	return strings.Contains(preprocessed, token) ||
		strings.Contains(upper, strings.ToUpper(token))
}

// Detect 偵測文字中的品牌與商品
// 評分規則：品牌與商品同時出現得 len(brand)+len(product)+20 分，
// 只找到商品時退而求其次以 len(product) 計分；同分時先出現的詞條優先
func (m *BrandMatcher) Detect(text string) BrandMatch {
	if text == "" {
		return BrandMatch{}
	}

	preprocessed := NormalizeText(text)
	upper := strings.ToUpper(preprocessed)

	var best BrandMatch
	for _, entry := range m.catalog {
		if !containsToken(preprocessed, upper, entry.Brand) {
			continue
		}
		for _, category := range entry.Categories {
			for _, product := range category.Products {
				if !containsToken(preprocessed, upper, product) {
					continue
				}
				score := len([]rune(entry.Brand)) + len([]rune(product)) + 20
				if score > best.Score {
					best = BrandMatch{
						Brand:    entry.Brand,
						Product:  product,
						Category: category.Name,
						Score:    score,
					}
				}
			}
		}
	}

	// 品牌沒出現時改用純商品比對
	if best.Brand == "" {
		for _, entry := range m.catalog {
			for _, category := range entry.Categories {
				for _, product := range category.Products {
					if !containsToken(preprocessed, upper, product) {
						continue
					}
					score := len([]rune(product))
					if score > best.Score {
						best = BrandMatch{
							Brand:    entry.Brand,
							Product:  product,
							Category: category.Name,
							Score:    score,
						}
					}
				}
			}
		}
	}

	if best.Brand != "" && best.Product != "" {
		best.FullName = best.Brand + " " + best.Product
	}
	return best
}

// DetectBrandOnly 只偵測品牌名稱，找不到回傳空字串
func (m *BrandMatcher) DetectBrandOnly(text string) string {
	preprocessed := NormalizeText(text)
	upper := strings.ToUpper(preprocessed)

	for _, entry := range m.catalog {
		if containsToken(preprocessed, upper, entry.Brand) {
			return entry.Brand
		}
	}
	return ""
}

// IsBeverageByVolume 判斷文字是否同時帶有 ml 單位與飲料關鍵字
func (m *BrandMatcher) IsBeverageByVolume(text string) bool {
	if text == "" {
		return false
	}
	if !strings.Contains(strings.ToLower(text), "ml") {
		return false
	}
	for _, keyword := range m.beverageKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// BeverageKeywordIn 回傳文字中第一個出現的飲料關鍵字，找不到回傳空字串
func (m *BrandMatcher) BeverageKeywordIn(text string) string {
	for _, keyword := range m.beverageKeywords {
		if strings.Contains(text, keyword) {
			return keyword
		}
	}
	return ""
}

// RepresentativeProduct 推測品牌的代表商品
// 文字帶 ml 時優先取飲料或乳製品分類，否則取第一個分類的第一個商品
func (m *BrandMatcher) RepresentativeProduct(brand, text string) string {
	var entry *BrandEntry
	for i := range m.catalog {
		if m.catalog[i].Brand == brand {
			entry = &m.catalog[i]
			break
		}
	}
	if entry == nil || len(entry.Categories) == 0 {
		return ""
	}

	if strings.Contains(strings.ToLower(text), "ml") {
		for _, preferred := range []string{"음료류", "유제품"} {
			for _, category := range entry.Categories {
				if category.Name == preferred && len(category.Products) > 0 {
					return category.Products[0]
				}
			}
		}
	}

	first := entry.Categories[0]
	if len(first.Products) == 0 {
		return ""
	}
	return first.Products[0]
}
