package openai

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// DETERMINISTIC FALLBACKS
// Работают без API-ключа и при любых сбоях API.
// ══════════════════════════════════════════════════════════════════════════════

var motivationCompleted = []string{
	"Живой, дерзкий, вот так надо работать! 🔥",
	"Красавчик, уровень растёт! 💪",
	"Огонь! Продолжай в том же духе! ⚡",
	"Ты в ударе! Так держать! 🚀",
	"Мощно! Идёшь к цели! 🎯",
	"Красота! Ещё одна победа! 🏆",
	"Безбашенно! Так и надо! 💥",
	"Жёстко! Ты на правильном пути! 🔥",
}

var motivationMissed = []string{
	"Слабина? Исправим. Поехали дальше! 💪",
	"Бывает. Главное - не сдавайся! 🚀",
	"Ничего страшного. Завтра будет лучше! ⭐",
	"Окей, пропустил. Но не останавливайся! 🔥",
	"Бывает. Важно не сбиться с пути! 💎",
	"Ничего, завтра наверстаешь! 🎯",
}

func cannedMotivation(completed bool) string {
	if completed {
		return motivationCompleted[rand.Intn(len(motivationCompleted))]
	}
	return motivationMissed[rand.Intn(len(motivationMissed))]
}

// Progress patterns: a pair gives current/target, a single number gives
// only the current value.
var progressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)я на (\d+)`),
	regexp.MustCompile(`(?i)на (\d+)`),
	regexp.MustCompile(`(\d+)\s*/\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*из\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*до\s*(\d+)`),
}

// Goal patterns give only the target value.
var goalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)цель[:\s]+(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s+подписчик`),
	regexp.MustCompile(`(?i)(\d+)\s+кг`),
	regexp.MustCompile(`(?i)(\d+)\s+минут`),
}

var titleLeadRe = regexp.MustCompile(`(?i)^(хочу\s+цель|добавь|добавить|нужна\s+цель)[:\s]*`)
var titleTailRe = regexp.MustCompile(`(?i)я\s+на\s+\d+.*$`)

// parseTaskFallback extracts a task draft with regex rules.
func parseTaskFallback(text string) TaskDraft {
	draft := TaskDraft{Title: strings.TrimSpace(text)}

	for _, re := range progressPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) == 3 {
			cur := mustFloat(m[1])
			target := mustFloat(m[2])
			draft.CurrentProgress = &cur
			draft.TargetProgress = &target
		} else {
			cur := mustFloat(m[1])
			draft.CurrentProgress = &cur
		}
		break
	}

	if draft.TargetProgress == nil {
		for _, re := range goalPatterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			target := mustFloat(m[1])
			draft.TargetProgress = &target
			if draft.CurrentProgress == nil {
				zero := 0.0
				draft.CurrentProgress = &zero
			}
			break
		}
	}

	title := titleLeadRe.ReplaceAllString(text, "")
	title = titleTailRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if title != "" {
		draft.Title = title
	}

	return draft
}

// Keyword table for offline categorization.
var categoryKeywords = map[string][]string{
	"Тренировки":      {"тренировка", "тренировк", "кардио", "спорт", "бег", "зал", "фитнес", "упражнен", "качаться"},
	"Блог":            {"блог", "сторис", "пост", "контент", "публикация", "подписчик"},
	"Работа":          {"работа", "задача", "проект", "встреча", "звонок", "клиент", "лид", "продаж"},
	"Продажи":         {"продаж", "лид", "клиент", "сделка", "контракт", "договор"},
	"Команда":         {"команда", "сотрудник", "коллега", "встреча", "совещание"},
	"Чтение":          {"читать", "книга", "статья", "обучение", "изучение"},
	"Лайвы":           {"лайв", "стрим", "эфир", "трансляция"},
	"Личное развитие": {"развитие", "навык", "курс", "обучение", "саморазвитие"},
}

// categorizeByKeywords matches the task text against the keyword table.
// Falls back to "Работа" when nothing matches.
func categorizeByKeywords(text string, available []string) string {
	lower := strings.ToLower(text)

	has := make(map[string]bool, len(available))
	for _, c := range available {
		has[c] = true
	}

	// Deterministic order: walk availables, not the map.
	for _, category := range available {
		words, ok := categoryKeywords[category]
		if !ok {
			continue
		}
		for _, w := range words {
			if strings.Contains(lower, w) {
				return category
			}
		}
	}

	if has["Работа"] {
		return "Работа"
	}
	if len(available) > 0 {
		return available[0]
	}
	return "Работа"
}

func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
