package inference

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"空字串", "", ""},
		{"移除標點", "매일! 두유, 1000ml", "매일 두유 1000ml"},
		{"折疊空白", "  우유   1000ml  ", "우유 1000ml"},
		{"保留英數", "Milk 500ml", "Milk 500ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Run("空輸入", func(t *testing.T) {
		if got := ExtractKeywords(""); len(got) != 0 {
			t.Errorf("ExtractKeywords(\"\") = %v, want empty", got)
		}
	})

	t.Run("上限十個", func(t *testing.T) {
		got := ExtractKeywords("가나다라마바사아자차카타파하")
		if len(got) != maxKeywords {
			t.Errorf("len = %d, want %d", len(got), maxKeywords)
		}
	})

	t.Run("二字子字串優先", func(t *testing.T) {
		got := ExtractKeywords("두유")
		want := []string{"두유"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExtractKeywords(두유) = %v, want %v", got, want)
		}
	})

	t.Run("相同輸入結果一致", func(t *testing.T) {
		a := ExtractKeywords("매일두유 99.9% 1000ml")
		b := ExtractKeywords("매일두유 99.9% 1000ml")
		if !reflect.DeepEqual(a, b) {
			t.Errorf("not deterministic: %v vs %v", a, b)
		}
	})

	t.Run("去除空白後切字", func(t *testing.T) {
		got := ExtractKeywords("우 유")
		want := []string{"우유"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ExtractKeywords(우 유) = %v, want %v", got, want)
		}
	})
}

func TestMeaningfulTextWithNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"百分比型", "매일두유99.9% 무첨가", "매일두유99.9%"},
		{"容量型", "매일두유1000ml", "매일두유1000ml"},
		{"長度不足", "물1", ""},
		{"無數字", "신선한 우유", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeaningfulTextWithNumbers(tt.in); got != tt.want {
				t.Errorf("MeaningfulTextWithNumbers(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummarizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"空字串", "", ""},
		{"取前三個關鍵字", "매일두유", "매일 일두 두유"},
		{"無關鍵字時取原文", "a", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeText(tt.in); got != tt.want {
				t.Errorf("SummarizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstKoreanWord(t *testing.T) {
	if got := FirstKoreanWord("fresh 우유 milk"); got != "우유" {
		t.Errorf("FirstKoreanWord = %q, want 우유", got)
	}
	if got := FirstKoreanWord("abc 123"); got != "" {
		t.Errorf("FirstKoreanWord = %q, want empty", got)
	}
}
