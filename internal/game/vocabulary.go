package game

import (
	"sort"
	"strings"
	"sync"
)

// defaultVocabulary 没有配置词库时使用的内置词库
var defaultVocabulary = map[string][]string{
	"food":    {"pizza", "sushi", "kimchi", "hamburger", "ramen", "tteokbokki", "pasta", "taco"},
	"animal":  {"tiger", "penguin", "giraffe", "dolphin", "rabbit", "eagle", "octopus", "panda"},
	"place":   {"airport", "library", "hospital", "beach", "museum", "subway", "school", "bakery"},
	"job":     {"firefighter", "nurse", "pilot", "chef", "dentist", "farmer", "lawyer", "barber"},
	"sport":   {"soccer", "tennis", "baseball", "skiing", "boxing", "archery", "surfing", "golf"},
	"object":  {"umbrella", "mirror", "scissors", "pillow", "backpack", "candle", "ladder", "wallet"},
	"country": {"korea", "brazil", "egypt", "canada", "japan", "kenya", "norway", "mexico"},
}

// Vocabulary 类别到关键词的内存词库
type Vocabulary struct {
	mu    sync.RWMutex
	words map[string][]string
}

// NewVocabulary 用给定词库创建，为空时使用内置词库
func NewVocabulary(words map[string][]string) *Vocabulary {
	v := &Vocabulary{}
	v.Replace(words)
	return v
}

// Replace 替换整个词库（配置热加载时使用），为空时使用内置词库
func (v *Vocabulary) Replace(words map[string][]string) {
	if len(words) == 0 {
		words = defaultVocabulary
	}
	cleaned := make(map[string][]string, len(words))
	for category, keywords := range words {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		var list []string
		for _, k := range keywords {
			if k = strings.TrimSpace(k); k != "" {
				list = append(list, k)
			}
		}
		if len(list) > 0 {
			cleaned[category] = list
		}
	}

	v.mu.Lock()
	v.words = cleaned
	v.mu.Unlock()
}

// Categories 所有类别，按名称排序
func (v *Vocabulary) Categories() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	categories := make([]string, 0, len(v.words))
	for c := range v.words {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Has 类别是否存在
func (v *Vocabulary) Has(category string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.words[category]
	return ok
}

// Keywords 某个类别的关键词
func (v *Vocabulary) Keywords(category string) ([]string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keywords, ok := v.words[category]
	if !ok {
		return nil, false
	}
	return append([]string(nil), keywords...), true
}
