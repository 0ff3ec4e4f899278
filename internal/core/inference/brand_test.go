package inference

import "testing"

func TestBrandMatcherDetect(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	tests := []struct {
		name        string
		in          string
		wantBrand   string
		wantProduct string
	}{
		{"品牌加商品", "매일 두유 1000ml", "매일", "두유"},
		{"泡麵品牌", "농심 신라면 120g", "농심", "신라면"},
		{"無品牌無商品", "신선한 야채", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Detect(tt.in)
			if got.Brand != tt.wantBrand || got.Product != tt.wantProduct {
				t.Errorf("Detect(%q) = {%q %q}, want {%q %q}",
					tt.in, got.Brand, got.Product, tt.wantBrand, tt.wantProduct)
			}
		})
	}
}

func TestBrandMatcherDetectFullName(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	got := m.Detect("매일 두유 1000ml")
	if got.FullName != "매일 두유" {
		t.Errorf("FullName = %q, want 매일 두유", got.FullName)
	}
	if got.Category != "유제품" {
		t.Errorf("Category = %q, want 유제품", got.Category)
	}
}

func TestBrandMatcherProductOnlyFallback(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	// 品牌名稱缺席時退回純商品比對，仍回填所屬品牌
	got := m.Detect("신라면 멀티팩")
	if got.Brand != "농심" || got.Product != "신라면" {
		t.Errorf("Detect = {%q %q}, want {농심 신라면}", got.Brand, got.Product)
	}
}

func TestBrandMatcherScoring(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	// 品牌+商品的組合分數必須壓過另一個只有商品的候選
	got := m.Detect("빙그레 메로나 아이스크림")
	if got.Brand != "빙그레" || got.Product != "메로나" {
		t.Errorf("Detect = {%q %q}, want {빙그레 메로나}", got.Brand, got.Product)
	}
}

func TestIsBeverageByVolume(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"牛奶含容量", "우유 1000ml", true},
		{"大寫單位", "두유 500ML", true},
		{"有關鍵字無容量", "우유 1팩", false},
		{"有容量無關鍵字", "간장 500ml", false},
		{"空字串", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IsBeverageByVolume(tt.in); got != tt.want {
				t.Errorf("IsBeverageByVolume(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepresentativeProduct(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	// ml 線索存在時優先取飲料或乳製品分類
	if got := m.RepresentativeProduct("매일", "매일 500ml"); got != "매일우유" {
		t.Errorf("RepresentativeProduct(매일, ml) = %q, want 매일우유", got)
	}

	// 無 ml 時取第一個分類的第一個商品
	if got := m.RepresentativeProduct("농심", "농심"); got != "신라면" {
		t.Errorf("RepresentativeProduct(농심) = %q, want 신라면", got)
	}

	// 未知品牌
	if got := m.RepresentativeProduct("없는브랜드", ""); got != "" {
		t.Errorf("RepresentativeProduct(unknown) = %q, want empty", got)
	}
}

func TestDetectBrandOnly(t *testing.T) {
	m := NewBrandMatcher(nil, nil)

	if got := m.DetectBrandOnly("오뚜기 제품"); got != "오뚜기" {
		t.Errorf("DetectBrandOnly = %q, want 오뚜기", got)
	}
	if got := m.DetectBrandOnly("일반 식품"); got != "" {
		t.Errorf("DetectBrandOnly = %q, want empty", got)
	}
}
