package vision

import (
	"sort"
	"strings"
)

// 補正後類別的直接翻譯表，優先於一般食材字典
var fruitTranslations = map[string]string{
	"avocado": "아보카도",
	"kiwi":    "키위",
	"peach":   "복숭아",
	"apple":   "사과",
	"orange":  "오렌지",
	"banana":  "바나나",
	"potato":  "감자",
	"onion":   "양파",
}

// 偵測類別的英韓食材字典
var foodIngredientNames = map[string]string{
	"apple":       "사과",
	"banana":      "바나나",
	"carrot":      "당근",
	"tomato":      "토마토",
	"orange":      "오렌지",
	"onion":       "양파",
	"potato":      "감자",
	"cucumber":    "오이",
	"lettuce":     "상추",
	"broccoli":    "브로콜리",
	"cabbage":     "양배추",
	"eggs":        "계란",
	"egg":         "계란",
	"milk":        "우유",
	"bread":       "빵",
	"rice":        "쌀",
	"chicken":     "닭고기",
	"beef":        "소고기",
	"pork":        "돼지고기",
	"fish":        "생선",
	"blueberry":   "블루베리",
	"strawberry":  "딸기",
	"eggplant":    "가지",
	"zucchini":    "호박",
	"bell pepper": "피망",
	"cauliflower": "콜리플라워",
	"spinach":     "시금치",
	"shrimp":      "새우",
	"corn":        "옥수수",
	"cheese":      "치즈",
	"yogurt":      "요거트",
	"butter":      "버터",
	"flour":       "밀가루",
	"sugar":       "설탕",
	"salt":        "소금",
	"mushroom":    "버섯",
	"garlic":      "마늘",
	"ginger":      "생강",
	"lemon":       "레몬",
	"lime":        "라임",
	"grape":       "포도",
	"watermelon":  "수박",
	"pineapple":   "파인애플",
	"avocado":     "아보카도",
	"radish":      "무",
	"pepper":      "고추",
	"bean":        "콩",
	"celery":      "셀러리",
	"asparagus":   "아스파라거스",
	"kale":        "케일",
	"sweet potato": "고구마",
	"bell_pepper":  "피망",
	"pumpkin":      "호박",
}

// 部分比對用的固定順序鍵清單，確保翻譯結果可重現
var foodIngredientKeys = func() []string {
	keys := make([]string, 0, len(foodIngredientNames))
	for k := range foodIngredientNames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// 明確的非食材類別，偵測到時直接略過
var nonFoodClasses = []string{
	"person", "hand", "human", "bottle", "package", "container", "box", "bag",
	"plate", "bowl", "cup", "glass", "knife", "fork", "spoon",
	"table", "chair", "wall", "floor", "ceiling", "window", "door",
	"plastic", "metal", "wood", "paper", "cloth", "fabric",
}

// IsNonFood 判斷偵測類別是否屬於非食材
func IsNonFood(class string) bool {
	lower := strings.ToLower(class)
	for _, nonFood := range nonFoodClasses {
		if strings.Contains(lower, nonFood) {
			return true
		}
	}
	return false
}

// TranslateClass 將偵測類別翻譯成韓文食材名稱
// 非食材回傳 ("", false)；字典查無時回傳原類別，保留其為食材的可能性
func TranslateClass(class string) (string, bool) {
	lower := strings.ToLower(class)

	if IsNonFood(lower) {
		return "", false
	}

	if name, ok := fruitTranslations[lower]; ok {
		return name, true
	}
	if name, ok := foodIngredientNames[lower]; ok {
		return name, true
	}

	// 部分比對，例如 "green apple" 仍可對到 apple
	for _, english := range foodIngredientKeys {
		if strings.Contains(lower, english) || strings.Contains(english, lower) {
			return foodIngredientNames[english], true
		}
	}

	return class, true
}
