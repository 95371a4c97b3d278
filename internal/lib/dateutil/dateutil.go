// Package dateutil содержит календарную арифметику для окон подписки.
package dateutil

import (
	"fmt"
	"time"
)

// Tier значения оплачиваемых тарифов.
const (
	TierMonthly   = "monthly"
	TierQuarterly = "quarterly"
	TierYearly    = "yearly"
)

// AddTier прибавляет к дате срок тарифа: месяц, три месяца или год.
// Используется правило нормализации time.AddDate: 29 февраля + 1 год даёт
// 1 марта, 31 января + 1 месяц даёт 2 или 3 марта. Одно и то же правило
// применяется для пробного периода, оплаты и административных переопределений.
func AddTier(start time.Time, tier string) (time.Time, error) {
	const op = "dateutil.AddTier"
	switch tier {
	case TierMonthly:
		return start.AddDate(0, 1, 0), nil
	case TierQuarterly:
		return start.AddDate(0, 3, 0), nil
	case TierYearly:
		return start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("%s: unknown tier %q", op, tier)
}

// DaysRemaining возвращает max(0, ceil((end-now)/сутки)).
func DaysRemaining(end, now time.Time) int {
	diff := end.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
