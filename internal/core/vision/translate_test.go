package vision

import "testing"

func TestTranslateClass(t *testing.T) {
	tests := []struct {
		name     string
		class    string
		want     string
		wantFood bool
	}{
		{"補正後類別", "avocado", "아보카도", true},
		{"一般食材", "carrot", "당근", true},
		{"大小寫不敏感", "Apple", "사과", true},
		{"部分比對", "green apple", "사과", true},
		{"非食材", "person", "", false},
		{"非食材容器", "plastic bottle", "", false},
		{"字典外保留原名", "durian", "durian", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isFood := TranslateClass(tt.class)
			if isFood != tt.wantFood {
				t.Fatalf("TranslateClass(%q) food = %v, want %v", tt.class, isFood, tt.wantFood)
			}
			if got != tt.want {
				t.Errorf("TranslateClass(%q) = %q, want %q", tt.class, got, tt.want)
			}
		})
	}
}

func TestIsNonFood(t *testing.T) {
	if !IsNonFood("hand") {
		t.Error("hand should be non-food")
	}
	if IsNonFood("banana") {
		t.Error("banana should be food")
	}
}
